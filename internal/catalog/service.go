package catalog

import (
	"context"

	"github.com/GonzanDev/sellos-pro/internal/catalog/repository"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the read-only catalog facade. Concurrent list reads for the
// same category collapse into a single repository query via singleflight.
type Service struct {
	repo repository.RepoInterface
	sfg  singleflight.Group
}

func NewService(repo repository.RepoInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	v, err, _ := s.sfg.Do("products:"+category, func() (interface{}, error) {
		return s.repo.GetAllProducts(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}
