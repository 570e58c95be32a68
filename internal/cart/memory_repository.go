package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps carts in a map. The default backend when no Mongo
// URI is configured, and the workhorse for unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*Cart),
	}
}

func (m *MemoryRepository) GetCart(_ context.Context, ownerID string) (*Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return copyCart(stored), nil
}

func (m *MemoryRepository) UpsertCart(_ context.Context, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stored := copyCart(cart)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	m.carts[cart.OwnerID] = stored
	return nil
}

func (m *MemoryRepository) DeleteCart(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, ownerID)
	return nil
}

func copyCart(c *Cart) *Cart {
	dup := *c
	dup.Lines = make([]Line, len(c.Lines))
	copy(dup.Lines, c.Lines)
	return &dup
}
