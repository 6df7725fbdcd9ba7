package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/GonzanDev/sellos-pro/internal/catalog/repository"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	calls   atomic.Int64
	release chan struct{}
}

func (c *countingRepo) GetAllProducts(context.Context, string) ([]*domain.Product, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return []*domain.Product{{ID: 1, Name: "Sello", Price: 100}}, nil
}

func (c *countingRepo) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, repository.ErrProductNotFound
}

func (c *countingRepo) Close() error               { return nil }
func (c *countingRepo) RunMigrations(string) error { return nil }

func TestListProducts_CollapsesConcurrentReads(t *testing.T) {
	repo := &countingRepo{release: make(chan struct{})}
	service := NewService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := service.ListProducts(context.Background(), "")
			assert.NoError(t, err)
			assert.Len(t, products, 1)
		}()
	}

	close(repo.release)
	wg.Wait()

	// Concurrent callers share in-flight queries, so far fewer repository
	// hits than callers.
	assert.Less(t, repo.calls.Load(), int64(10))
}

func TestGetProduct_PassesThrough(t *testing.T) {
	service := NewService(&countingRepo{})

	_, err := service.GetProduct(context.Background(), 42)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}
