package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/go-storefront/storefront/internal/cart"
	"github.com/go-storefront/storefront/internal/catalog"
	"github.com/go-storefront/storefront/internal/pricing"
	"github.com/go-storefront/storefront/internal/stock"
)

func newCartFixture() (*CartHandler, *stock.MemoryLedger) {
	cat := catalog.NewMemoryCatalog(
		catalog.Product{ID: 1, Name: "Laptop", UnitPriceCents: 129900, Stock: 5},
		catalog.Product{ID: 2, Name: "Mouse", UnitPriceCents: 2500, Stock: 10},
	)
	ledger := stock.NewMemoryLedger()
	ledger.SetStock(1, 5)
	ledger.SetStock(2, 10)

	carts := cart.NewService(cart.NewMemoryRepository(), nil, ledger)
	coupons := pricing.NewRegistry(pricing.Coupon{Code: "WELCOME10", DiscountPct: 10})

	return NewCartHandler(carts, cat, coupons, 5*time.Second), ledger
}

func withOwner(r *http.Request, ownerID string) *http.Request {
	ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
	return r.WithContext(ctx)
}

func withProductParam(r *http.Request, productID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("product_id", productID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetCart_EmptyCart(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("GET", "/", nil), "user-1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Lines) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(response.Lines))
	}
	if response.TotalCents != 0 {
		t.Errorf("Expected total 0, got %d", response.TotalCents)
	}
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	// No owner in context

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAddLine_Success(t *testing.T) {
	handler, _ := newCartFixture()

	reqBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 1, Quantity: 2})
	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(reqBytes)), "user-1")

	handler.AddLine(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response CartDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(response.Lines))
	}
	if response.Lines[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", response.Lines[0].Quantity)
	}
	if response.SubtotalCents != 259800 {
		t.Errorf("Expected subtotal 259800, got %d", response.SubtotalCents)
	}
}

func TestAddLine_ClampedToStock(t *testing.T) {
	handler, _ := newCartFixture()

	// Product 1 has 5 in stock; asking for 8 silently caps the line at 5.
	reqBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 1, Quantity: 8})
	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(reqBytes)), "user-1")

	handler.AddLine(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response CartDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Lines[0].Quantity != 5 {
		t.Errorf("Expected clamped quantity 5, got %d", response.Lines[0].Quantity)
	}
}

func TestAddLine_InvalidJSON(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader([]byte("invalid json"))), "user-1")

	handler.AddLine(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_request" {
		t.Errorf("Expected error code 'invalid_request', got '%s'", response.Code)
	}
}

func TestAddLine_InvalidProductID(t *testing.T) {
	handler, _ := newCartFixture()

	tests := []struct {
		name      string
		productID int64
	}{
		{"zero product_id", 0},
		{"negative product_id", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: tt.productID, Quantity: 2})
			recorder := httptest.NewRecorder()
			request := withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(reqBytes)), "user-1")

			handler.AddLine(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != "invalid_product_id" {
				t.Errorf("Expected error code 'invalid_product_id', got '%s'", response.Code)
			}
		})
	}
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	handler, _ := newCartFixture()

	tests := []struct {
		name     string
		quantity int
	}{
		{"negative quantity", -1},
		{"quantity too high", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 1, Quantity: tt.quantity})
			recorder := httptest.NewRecorder()
			request := withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(reqBytes)), "user-1")

			handler.AddLine(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}

			var response ErrorResponse
			json.NewDecoder(recorder.Body).Decode(&response)
			if response.Code != "invalid_quantity" {
				t.Errorf("Expected error code 'invalid_quantity', got '%s'", response.Code)
			}
		})
	}
}

func TestChangeQuantity_Success(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 2, Quantity: 3})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	reqBytes, _ := json.Marshal(ChangeQuantityRequestDTO{Delta: 2})
	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("PATCH", "/lines/2", bytes.NewReader(reqBytes)), "user-1")
	request = withProductParam(request, "2")

	handler.ChangeQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Lines[0].Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", response.Lines[0].Quantity)
	}
}

func TestChangeQuantity_NegativeDeltaToZeroRemovesLine(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 2, Quantity: 3})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	reqBytes, _ := json.Marshal(ChangeQuantityRequestDTO{Delta: -3})
	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("PATCH", "/lines/2", bytes.NewReader(reqBytes)), "user-1")
	request = withProductParam(request, "2")

	handler.ChangeQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	json.NewDecoder(recorder.Body).Decode(&response)
	if len(response.Lines) != 0 {
		t.Errorf("Expected empty cart after delta to zero, got %d lines", len(response.Lines))
	}
}

func TestChangeQuantity_InvalidProductID(t *testing.T) {
	handler, _ := newCartFixture()

	tests := []struct {
		name      string
		productID string
	}{
		{"non-numeric product_id", "abc"},
		{"zero product_id", "0"},
		{"negative product_id", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqBytes, _ := json.Marshal(ChangeQuantityRequestDTO{Delta: 1})
			recorder := httptest.NewRecorder()
			request := withOwner(httptest.NewRequest("PATCH", "/lines/"+tt.productID, bytes.NewReader(reqBytes)), "user-1")
			request = withProductParam(request, tt.productID)

			handler.ChangeQuantity(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}
		})
	}
}

func TestChangeQuantity_ZeroDelta(t *testing.T) {
	handler, _ := newCartFixture()

	reqBytes, _ := json.Marshal(ChangeQuantityRequestDTO{Delta: 0})
	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("PATCH", "/lines/1", bytes.NewReader(reqBytes)), "user-1")
	request = withProductParam(request, "1")

	handler.ChangeQuantity(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_delta" {
		t.Errorf("Expected error code 'invalid_delta', got '%s'", response.Code)
	}
}

func TestRemoveLine_Success(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 1, Quantity: 1})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("DELETE", "/lines/1", nil), "user-1")
	request = withProductParam(request, "1")

	handler.RemoveLine(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	json.NewDecoder(recorder.Body).Decode(&response)
	if len(response.Lines) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(response.Lines))
	}
}

func TestClearCart_Success(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 1, Quantity: 1})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("DELETE", "/", nil), "user-1")

	handler.ClearCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	json.NewDecoder(recorder.Body).Decode(&response)
	if len(response.Lines) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(response.Lines))
	}
}

func TestGetCart_CouponAndShippingQuery(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 2, Quantity: 4})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("GET", "/?coupon=welcome10&shipping=true", nil), "user-1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response CartDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// 4 x 2500 = 10000 subtotal, +2000 shipping, 10% of 12000 = 1200 off.
	if response.SubtotalCents != 10000 {
		t.Errorf("Expected subtotal 10000, got %d", response.SubtotalCents)
	}
	if response.ShippingFeeCents != 2000 {
		t.Errorf("Expected shipping 2000, got %d", response.ShippingFeeCents)
	}
	if response.DiscountCents != 1200 {
		t.Errorf("Expected discount 1200, got %d", response.DiscountCents)
	}
	if response.TotalCents != 10800 {
		t.Errorf("Expected total 10800, got %d", response.TotalCents)
	}
}

func TestGetCart_UnknownCouponIgnored(t *testing.T) {
	handler, _ := newCartFixture()

	addBytes, _ := json.Marshal(AddLineRequestDTO{ProductID: 2, Quantity: 4})
	addRec := httptest.NewRecorder()
	handler.AddLine(addRec, withOwner(httptest.NewRequest("POST", "/lines", bytes.NewReader(addBytes)), "user-1"))

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("GET", "/?coupon=NOPE", nil), "user-1")

	handler.GetCart(recorder, request)

	var response CartDTO
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.DiscountCents != 0 {
		t.Errorf("Expected zero discount for unknown coupon, got %d", response.DiscountCents)
	}
}
