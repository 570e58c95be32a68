package catalog

import (
	"context"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is the canonical catalog schema. Every external producer shape is
// adapted to this at the boundary; nothing else flows through the core.
type Product struct {
	ID             int64
	Name           string
	Description    string
	UnitPriceCents int64
	Stock          int
	DiscountPct    int
	CreatedAt      time.Time
}

// Catalog is the read-only product source the storefront consumes.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetAllProducts(ctx context.Context) ([]*Product, error)
	Close() error
}
