package orders

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryHistory keeps orders in memory, newest first per owner. Used in
// tests and when no Postgres is configured.
type MemoryHistory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Order
	byOwner map[string][]*Order
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		byID:    make(map[uuid.UUID]*Order),
		byOwner: make(map[string][]*Order),
	}
}

func (h *MemoryHistory) Append(_ context.Context, order *Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byID[order.ID]; exists {
		return ErrDuplicateOrder
	}

	stored := copyOrder(order)
	h.byID[order.ID] = stored
	// Prepend: ListByOwner returns newest first
	h.byOwner[order.OwnerID] = append([]*Order{stored}, h.byOwner[order.OwnerID]...)
	return nil
}

func (h *MemoryHistory) FindByID(_ context.Context, id uuid.UUID) (*Order, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	order, ok := h.byID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (h *MemoryHistory) ListByOwner(_ context.Context, ownerID string) ([]*Order, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stored := h.byOwner[ownerID]
	result := make([]*Order, 0, len(stored))
	for _, order := range stored {
		result = append(result, copyOrder(order))
	}
	return result, nil
}

func (h *MemoryHistory) Close() error {
	return nil
}

func copyOrder(o *Order) *Order {
	dup := *o
	dup.Lines = make([]OrderLine, len(o.Lines))
	copy(dup.Lines, o.Lines)
	return &dup
}
