package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/GonzanDev/sellos-pro/internal/domain"
)

// MemoryStore keeps serialized cart records in process memory. It round-trips
// carts through JSON like the durable adapters do, so tests exercise the same
// serialization path.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string][]byte),
	}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	data, ok := m.carts[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCartNotFound
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (m *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	m.mu.Lock()
	m.carts[cart.SessionID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.carts, sessionID)
	m.mu.Unlock()
	return nil
}

// Put stores a raw record, bypassing serialization. Tests use it to seed
// corrupt or legacy-shaped data.
func (m *MemoryStore) Put(sessionID string, data []byte) {
	m.mu.Lock()
	m.carts[sessionID] = data
	m.mu.Unlock()
}
