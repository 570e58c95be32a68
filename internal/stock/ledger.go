package stock

import (
	"errors"
	"fmt"
)

// Common errors returned by the ledger
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which product made a decrement fail.
// errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Line is one product+quantity pair in a batch decrement.
type Line struct {
	ProductID int64
	Quantity  int
}

// Ledger holds the authoritative stock counts per product. It is shared
// across all carts and sessions and must be safe for concurrent use.
type Ledger interface {
	// AvailableStock returns the current authoritative count.
	// Unknown products have zero stock.
	AvailableStock(productID int64) int

	// TryDecrement decrements the product's stock only if quantity is
	// still available; otherwise it fails without mutating anything.
	TryDecrement(productID int64, quantity int) error

	// CommitBatch validates every line first, then decrements all of them.
	// If any line cannot be satisfied the whole batch fails and the ledger
	// is untouched. The returned error carries the failing product id.
	CommitBatch(lines []Line) error

	// Restock returns quantities to the pool. Used to compensate a
	// committed batch when a later step of checkout cannot complete.
	Restock(lines []Line)

	// SetStock sets the stock level for a product (used for initialization)
	SetStock(productID int64, quantity int)
}
