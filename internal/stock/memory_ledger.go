package stock

import (
	"sync"
)

// MemoryLedger implements Ledger with in-memory counters. All mutations run
// inside one critical section so two simultaneous checkouts for the last
// unit of a product cannot both succeed.
type MemoryLedger struct {
	mu     sync.RWMutex
	counts map[int64]int
}

// NewMemoryLedger creates an empty in-memory stock ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		counts: make(map[int64]int),
	}
}

// AvailableStock returns the current count, zero for unknown products.
func (l *MemoryLedger) AvailableStock(productID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counts[productID]
}

// TryDecrement atomically decrements if the quantity is still available.
func (l *MemoryLedger) TryDecrement(productID int64, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	count, exists := l.counts[productID]
	if !exists {
		return ErrProductNotFound
	}
	if quantity > count {
		return &InsufficientStockError{ProductID: productID}
	}

	l.counts[productID] = count - quantity
	return nil
}

// CommitBatch decrements every line or none of them.
func (l *MemoryLedger) CommitBatch(lines []Line) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// First pass: validate all lines have sufficient stock
	for _, line := range lines {
		count, exists := l.counts[line.ProductID]
		if !exists {
			return ErrProductNotFound
		}
		if line.Quantity > count {
			return &InsufficientStockError{ProductID: line.ProductID}
		}
	}

	// Second pass: decrement all lines
	for _, line := range lines {
		l.counts[line.ProductID] -= line.Quantity
	}
	return nil
}

// Restock returns quantities to the available pool.
func (l *MemoryLedger) Restock(lines []Line) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range lines {
		l.counts[line.ProductID] += line.Quantity
	}
}

// SetStock sets the stock level for a product.
func (l *MemoryLedger) SetStock(productID int64, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[productID] = quantity
}
