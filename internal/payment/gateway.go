package payment

import "context"

// Result is the opaque outcome of a charge attempt. Checkout only branches
// on Approved; the reference and reason pass through untouched.
type Result struct {
	Approved  bool
	Reference string
	Reason    string
}

// Gateway is the payment collaborator boundary. Charge may block until the
// external provider resolves; callers cancel through the context.
type Gateway interface {
	Charge(ctx context.Context, ownerID string, amountCents int64) (Result, error)
}

// StubGateway approves every charge with a canned reference. Used for local
// runs where no real provider is wired.
type StubGateway struct {
	Decline bool
}

func (g *StubGateway) Charge(ctx context.Context, ownerID string, amountCents int64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if g.Decline {
		return Result{Approved: false, Reason: "declined by stub"}, nil
	}
	return Result{Approved: true, Reference: "stub-payment"}, nil
}
