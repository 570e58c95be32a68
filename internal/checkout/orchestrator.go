package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/go-storefront/storefront/internal/cart"
	"github.com/go-storefront/storefront/internal/catalog"
	"github.com/go-storefront/storefront/internal/orders"
	"github.com/go-storefront/storefront/internal/payment"
	"github.com/go-storefront/storefront/internal/pricing"
	"github.com/go-storefront/storefront/internal/stock"
)

// CartStore is the slice of the cart service checkout needs.
type CartStore interface {
	GetCart(ctx context.Context, ownerID string) (*cart.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

// ProductReader supplies current product name and price for the snapshot.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// StockLedger is the authoritative stock view checkout commits against.
type StockLedger interface {
	AvailableStock(productID int64) int
	CommitBatch(lines []stock.Line) error
	Restock(lines []stock.Line)
}

// CouponLookup resolves a coupon code; unknown codes mean no discount.
type CouponLookup interface {
	Lookup(code string) (pricing.Coupon, bool)
}

// OrderHistory receives the committed order snapshot.
type OrderHistory interface {
	Append(ctx context.Context, order *orders.Order) error
}

// Request describes one checkout attempt for an owner's current cart.
type Request struct {
	OwnerID           string
	ShippingRequested bool
	ShippingAddress   string
	CouponCode        string
}

// Orchestrator turns a cart into an immutable order while decrementing
// stock, all or nothing. Validation gives fast feedback, but the batch
// decrement re-checks availability and is the true source of truth for the
// race window between the two.
type Orchestrator struct {
	carts    CartStore
	products ProductReader
	ledger   StockLedger
	coupons  CouponLookup
	history  OrderHistory
	payments payment.Gateway
}

func NewOrchestrator(
	carts CartStore,
	products ProductReader,
	ledger StockLedger,
	coupons CouponLookup,
	history OrderHistory,
	payments payment.Gateway,
) *Orchestrator {
	return &Orchestrator{
		carts:    carts,
		products: products,
		ledger:   ledger,
		coupons:  coupons,
		history:  history,
		payments: payments,
	}
}

// Checkout runs the commit protocol:
//
//  1. validate cart, address and per-line stock (fast, non-authoritative)
//  2. compute final totals from current catalog prices
//  3. charge payment; a declined result aborts with nothing mutated
//  4. batch-decrement stock, all lines or none
//  5. append the order, clear the cart
//
// On any failure the cart and ledger are exactly as they were before the
// call, so the caller can adjust and resubmit without data loss.
func (o *Orchestrator) Checkout(ctx context.Context, req *Request) (*orders.Order, error) {
	status := StatusIdle

	if err := advance(&status, StatusValidating); err != nil {
		return nil, err
	}

	current, err := o.carts.GetCart(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if current.IsEmpty() {
		return nil, o.fail(&status, ErrEmptyCart)
	}

	if req.ShippingRequested && req.ShippingAddress == "" {
		return nil, o.fail(&status, ErrMissingAddress)
	}

	// Fast pre-check for early user feedback; the commit re-checks.
	for _, line := range current.Lines {
		if line.Quantity > o.ledger.AvailableStock(line.ProductID) {
			return nil, o.fail(&status, &stock.InsufficientStockError{ProductID: line.ProductID})
		}
	}

	// Prices are re-read from the catalog here, not taken from cached
	// cart-display values, so price changes since the cart was viewed are
	// honored.
	lines, items, err := o.buildSnapshot(ctx, current)
	if err != nil {
		return nil, o.fail(&status, err)
	}

	var coupon *pricing.Coupon
	if c, ok := o.coupons.Lookup(req.CouponCode); ok {
		coupon = &c
	}
	totals := pricing.ComputeTotals(items, coupon, req.ShippingRequested)

	// The one suspension point: cancellation while the charge resolves
	// leaves cart and stock untouched.
	result, err := o.payments.Charge(ctx, req.OwnerID, totals.TotalCents)
	if err != nil {
		return nil, o.fail(&status, fmt.Errorf("payment gateway: %w", err))
	}
	if !result.Approved {
		return nil, o.fail(&status, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Reason))
	}

	if err := advance(&status, StatusCommitting); err != nil {
		return nil, err
	}

	batch := make([]stock.Line, len(current.Lines))
	for i, line := range current.Lines {
		batch[i] = stock.Line{ProductID: line.ProductID, Quantity: line.Quantity}
	}
	if err := o.ledger.CommitBatch(batch); err != nil {
		// Lost the race between validation and commit; nothing was decremented.
		return nil, o.fail(&status, err)
	}

	order := &orders.Order{
		ID:               uuid.New(),
		OwnerID:          req.OwnerID,
		Lines:            lines,
		SubtotalCents:    totals.SubtotalCents,
		DiscountCents:    totals.DiscountCents,
		ShippingFeeCents: totals.ShippingFeeCents,
		TotalCents:       totals.TotalCents,
		ShippingAddress:  req.ShippingAddress,
		PaymentReference: result.Reference,
		Status:           orders.OrderStatusConfirmed,
		CreatedAt:        time.Now(),
	}

	if err := o.history.Append(ctx, order); err != nil {
		// Put the stock back so a history outage leaves no partial state.
		o.ledger.Restock(batch)
		return nil, o.fail(&status, fmt.Errorf("failed to append order: %w", err))
	}

	if err := o.carts.Clear(ctx, req.OwnerID); err != nil {
		// The order is durable at this point; a stale cart is recoverable
		// by the owner, losing the order is not.
		log.Printf("failed to clear cart for owner %s after checkout %s: %v", req.OwnerID, order.ID, err)
	}

	if err := advance(&status, StatusCommitted); err != nil {
		return nil, err
	}
	return order, nil
}

// buildSnapshot fetches current prices from the catalog and freezes the cart
// lines into order line values.
func (o *Orchestrator) buildSnapshot(ctx context.Context, c *cart.Cart) ([]orders.OrderLine, []pricing.Item, error) {
	lines := make([]orders.OrderLine, 0, len(c.Lines))
	items := make([]pricing.Item, 0, len(c.Lines))

	for _, line := range c.Lines {
		product, err := o.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get product %d: %w", line.ProductID, err)
		}

		lines = append(lines, orders.OrderLine{
			ProductID:         product.ID,
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

	return lines, items, nil
}

func advance(status *Status, next Status) error {
	if !CanTransitionTo(*status, next) {
		return ErrIllegalTransition
	}
	*status = next
	return nil
}

func (o *Orchestrator) fail(status *Status, err error) error {
	if CanTransitionTo(*status, StatusFailed) {
		*status = StatusFailed
	}
	return err
}
