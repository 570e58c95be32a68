package cart

import (
	"context"
	"errors"
)

// Cache is a read-through cache in front of the cart repository.
type Cache interface {
	Get(ctx context.Context, ownerID string) (*Cart, error)
	Set(ctx context.Context, ownerID string, cart *Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
