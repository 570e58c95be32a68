package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/go-storefront/storefront/internal/cart"
	"github.com/go-storefront/storefront/internal/catalog"
	"github.com/go-storefront/storefront/internal/pricing"
)

// CouponLookup resolves display coupons for live total recalculation.
type CouponLookup interface {
	Lookup(code string) (pricing.Coupon, bool)
}

type CartHandler struct {
	carts   *cart.Service
	catalog catalog.Catalog
	coupons CouponLookup
	timeout time.Duration
}

func NewCartHandler(carts *cart.Service, cat catalog.Catalog, coupons CouponLookup, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: cat,
		coupons: coupons,
		timeout: timeout,
	}
}

type AddLineRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type ChangeQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CartLineDTO struct {
	ProductID         int64  `json:"product_id"`
	Name              string `json:"name"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	Quantity          int    `json:"quantity"`
	LineSubtotalCents int64  `json:"line_subtotal_cents"`
}

type CartDTO struct {
	OwnerID          string        `json:"owner_id"`
	Lines            []CartLineDTO `json:"lines"`
	SubtotalCents    int64         `json:"subtotal_cents"`
	DiscountCents    int64         `json:"discount_cents"`
	ShippingFeeCents int64         `json:"shipping_fee_cents"`
	TotalCents       int64         `json:"total_cents"`
}

// GET /api/v1/cart?coupon=CODE&shipping=true
//
// Totals are derived from current catalog prices on every read so the
// display stays honest when prices change under an open cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	current, err := h.carts.GetCart(ctx, ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}

	shipping := r.URL.Query().Get("shipping") == "true"

	var coupon *pricing.Coupon
	if code := r.URL.Query().Get("coupon"); code != "" {
		if c, ok := h.coupons.Lookup(code); ok {
			coupon = &c
		}
	}

	dto, err := h.toDTO(ctx, current, coupon, shipping)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// POST /api/v1/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	updated, err := h.carts.AddLine(ctx, ownerID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add line")
		return
	}

	dto, err := h.toDTO(ctx, updated, nil, false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// PATCH /api/v1/cart/lines/{product_id}
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be non-zero")
		return
	}

	updated, err := h.carts.ChangeQuantity(ctx, ownerID, productID, req.Delta)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to change quantity")
		return
	}

	dto, err := h.toDTO(ctx, updated, nil, false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// DELETE /api/v1/cart/lines/{product_id}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	updated, err := h.carts.RemoveLine(ctx, ownerID, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove line")
		return
	}

	dto, err := h.toDTO(ctx, updated, nil, false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := getOwnerIDFromContext(r.Context())
	if ownerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.Clear(ctx, ownerID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, CartDTO{OwnerID: ownerID, Lines: []CartLineDTO{}})
}

func (h *CartHandler) toDTO(ctx context.Context, c *cart.Cart, coupon *pricing.Coupon, shipping bool) (*CartDTO, error) {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	items := make([]pricing.Item, 0, len(c.Lines))

	for _, line := range c.Lines {
		product, err := h.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, CartLineDTO{
			ProductID:         line.ProductID,
			Name:              product.Name,
			UnitPriceCents:    product.UnitPriceCents,
			Quantity:          line.Quantity,
			LineSubtotalCents: product.UnitPriceCents * int64(line.Quantity),
		})
		items = append(items, pricing.Item{
			UnitPriceCents: product.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}

	totals := pricing.ComputeTotals(items, coupon, shipping)

	return &CartDTO{
		OwnerID:          c.OwnerID,
		Lines:            lines,
		SubtotalCents:    totals.SubtotalCents,
		DiscountCents:    totals.DiscountCents,
		ShippingFeeCents: totals.ShippingFeeCents,
		TotalCents:       totals.TotalCents,
	}, nil
}
