package orders

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// OrderLine is a value snapshot of a cart line at purchase time. Later
// changes to catalog price or stock never alter a placed order.
type OrderLine struct {
	ProductID         int64  `json:"product_id"`
	Name              string `json:"name"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	Quantity          int    `json:"quantity"`
	LineSubtotalCents int64  `json:"line_subtotal_cents"`
}

// Order is an immutable record of a completed purchase. It is created once
// by checkout and never mutated afterwards; administrative changes are new
// status events, not edits of the snapshot.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	OwnerID          string      `json:"owner_id"`
	Lines            []OrderLine `json:"lines"`
	SubtotalCents    int64       `json:"subtotal_cents"`
	DiscountCents    int64       `json:"discount_cents"`
	ShippingFeeCents int64       `json:"shipping_fee_cents"`
	TotalCents       int64       `json:"total_cents"`
	ShippingAddress  string      `json:"shipping_address,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}
