package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/cockroachdb/pebble"
)

// PebbleStore is the file-based cart store: carts live as JSON values in a
// local Pebble database, so a single-node deployment needs no external
// service to keep carts across restarts.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (p *PebbleStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	value, closer, err := p.db.Get([]byte(cartKey(sessionID)))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get failed: %w", err)
	}

	data := make([]byte, len(value))
	copy(data, value)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("pebble close failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (p *PebbleStore) Save(_ context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := p.db.Set([]byte(cartKey(cart.SessionID)), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set failed: %w", err)
	}
	return nil
}

func (p *PebbleStore) Delete(_ context.Context, sessionID string) error {
	if err := p.db.Delete([]byte(cartKey(sessionID)), pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete failed: %w", err)
	}
	return nil
}

func (p *PebbleStore) Close() error {
	return p.db.Close()
}
