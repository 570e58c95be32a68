package checkout

import (
	"context"
	"errors"

	"github.com/go-storefront/storefront/internal/cart"
	"github.com/go-storefront/storefront/internal/catalog"
	"github.com/go-storefront/storefront/internal/orders"
	"github.com/go-storefront/storefront/internal/payment"
	"github.com/go-storefront/storefront/internal/stock"
)

// MockCartStore implements CartStore for testing
type MockCartStore struct {
	Cart       *cart.Cart
	GetErr     error
	ClearErr   error
	ClearCalls int
}

func (m *MockCartStore) GetCart(_ context.Context, ownerID string) (*cart.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Cart == nil {
		return &cart.Cart{OwnerID: ownerID}, nil
	}
	return m.Cart, nil
}

func (m *MockCartStore) Clear(_ context.Context, _ string) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.ClearCalls++
	m.Cart = &cart.Cart{OwnerID: m.Cart.OwnerID}
	return nil
}

// MockProductReader implements ProductReader with a fixed product map
type MockProductReader struct {
	Products map[int64]*catalog.Product
	Err      error
}

func (m *MockProductReader) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	product, exists := m.Products[id]
	if !exists {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

// raceLedger wraps a real memory ledger and runs a hook before the batch
// commit, to model stock changing between validation and commit.
type raceLedger struct {
	*stock.MemoryLedger
	BeforeCommit func()
}

func (l *raceLedger) CommitBatch(lines []stock.Line) error {
	if l.BeforeCommit != nil {
		l.BeforeCommit()
		l.BeforeCommit = nil
	}
	return l.MemoryLedger.CommitBatch(lines)
}

// MockHistory implements OrderHistory, capturing appended orders
type MockHistory struct {
	AppendErr error
	Appended  []*orders.Order
}

func (m *MockHistory) Append(_ context.Context, order *orders.Order) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, order)
	return nil
}

// MockGateway implements payment.Gateway with a canned result
type MockGateway struct {
	Result       payment.Result
	Err          error
	ChargedCents []int64
}

func (m *MockGateway) Charge(ctx context.Context, _ string, amountCents int64) (payment.Result, error) {
	if err := ctx.Err(); err != nil {
		return payment.Result{}, err
	}
	if m.Err != nil {
		return payment.Result{}, m.Err
	}
	m.ChargedCents = append(m.ChargedCents, amountCents)
	return m.Result, nil
}

var errBoom = errors.New("boom")
