package cart

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository persists carts. The service layer owns all line mutation rules;
// a repository only stores and retrieves whole carts.
type Repository interface {
	GetCart(ctx context.Context, ownerID string) (*Cart, error)
	UpsertCart(ctx context.Context, cart *Cart) error
	DeleteCart(ctx context.Context, ownerID string) error
}
