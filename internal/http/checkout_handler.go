package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-storefront/storefront/internal/checkout"
	"github.com/go-storefront/storefront/internal/orders"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	timeout      time.Duration
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator, timeout: timeout}
}

type CheckoutRequestDTO struct {
	ShippingRequested bool   `json:"shipping_requested"`
	ShippingAddress   string `json:"shipping_address"`
	CouponCode        string `json:"coupon_code"`
}

type OrderLineDTO struct {
	ProductID         int64  `json:"product_id"`
	Name              string `json:"name"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	Quantity          int    `json:"quantity"`
	LineSubtotalCents int64  `json:"line_subtotal_cents"`
}

type OrderDTO struct {
	ID               string         `json:"id"`
	OwnerID          string         `json:"owner_id"`
	Lines            []OrderLineDTO `json:"lines"`
	SubtotalCents    int64          `json:"subtotal_cents"`
	DiscountCents    int64          `json:"discount_cents"`
	ShippingFeeCents int64          `json:"shipping_fee_cents"`
	TotalCents       int64          `json:"total_cents"`
	ShippingAddress  string         `json:"shipping_address,omitempty"`
	PaymentReference string         `json:"payment_reference,omitempty"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orchestrator.Checkout(ctx, &checkout.Request{
		OwnerID:           ownerID,
		ShippingRequested: req.ShippingRequested,
		ShippingAddress:   req.ShippingAddress,
		CouponCode:        req.CouponCode,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

func toOrderDTO(o *orders.Order) *OrderDTO {
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{
			ProductID:         l.ProductID,
			Name:              l.Name,
			UnitPriceCents:    l.UnitPriceCents,
			Quantity:          l.Quantity,
			LineSubtotalCents: l.LineSubtotalCents,
		})
	}
	return &OrderDTO{
		ID:               o.ID.String(),
		OwnerID:          o.OwnerID,
		Lines:            lines,
		SubtotalCents:    o.SubtotalCents,
		DiscountCents:    o.DiscountCents,
		ShippingFeeCents: o.ShippingFeeCents,
		TotalCents:       o.TotalCents,
		ShippingAddress:  o.ShippingAddress,
		PaymentReference: o.PaymentReference,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
	}
}
