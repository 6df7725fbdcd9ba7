package persistence

import (
	"context"
	"errors"

	"github.com/GonzanDev/sellos-pro/internal/domain"
)

// Store is the durable key-value port for full cart records, keyed by
// session. Every mutation in the cart store saves the whole cart through it
// before the mutation is considered complete.
type Store interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCartNotFound = errors.New("cart not found")
