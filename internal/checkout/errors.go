package checkout

import "errors"

// Every failure mode is reported to the caller exactly once; none are
// silently retried and none leave partial state behind. An invalid coupon is
// not a failure at all: it simply applies no discount.
var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress    = errors.New("shipping requested but no address given")
	ErrPaymentDeclined   = errors.New("payment was declined")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)
