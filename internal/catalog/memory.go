package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryCatalog is a map-backed Catalog used in tests and when no database
// path is configured.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int64]Product
}

func NewMemoryCatalog(products ...Product) *MemoryCatalog {
	c := &MemoryCatalog{
		products: make(map[int64]Product, len(products)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put inserts or replaces a product.
func (c *MemoryCatalog) Put(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *MemoryCatalog) GetProduct(_ context.Context, id int64) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (c *MemoryCatalog) GetAllProducts(_ context.Context) ([]*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]*Product, 0, len(c.products))
	for _, p := range c.products {
		p := p
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (c *MemoryCatalog) Close() error {
	return nil
}
