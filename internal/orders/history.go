package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// History is the append-only store of committed orders. No update or delete
// operation exists; this is the contract a durable-storage adapter fulfills.
type History interface {
	Append(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	Close() error
}

// OutboxEvent is a pending notification row written atomically with its
// order. The poller ships these to the notification topic.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Outbox is implemented by history backends that record order-placed events
// for asynchronous publishing.
type Outbox interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
