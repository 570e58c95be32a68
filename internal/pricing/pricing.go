package pricing

// All money is handled in integer minor units (cents). Conversion to a
// display format happens at the HTTP boundary, never here.

// FlatShippingFeeCents is the fixed surcharge applied when shipping is
// requested. There is no weight or distance model.
const FlatShippingFeeCents int64 = 2000

// Item is one priced cart line at computation time.
type Item struct {
	UnitPriceCents int64
	Quantity       int
}

// Totals is the monetary breakdown for a cart snapshot.
type Totals struct {
	SubtotalCents    int64
	DiscountCents    int64
	ShippingFeeCents int64
	TotalCents       int64
}

// ComputeTotals derives subtotal, coupon discount, shipping surcharge and
// total from a cart snapshot. It is a pure function: callable repeatedly for
// live recalculation and once more, authoritatively, at commit time.
//
// The coupon percentage is applied to subtotal plus shipping, so shipping
// itself is discounted. That matches the observed storefront behavior and is
// kept as-is pending product-owner confirmation.
func ComputeTotals(items []Item, coupon *Coupon, shippingRequested bool) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}

	var shippingFee int64
	if shippingRequested {
		shippingFee = FlatShippingFeeCents
	}

	discountBase := subtotal + shippingFee

	var discount int64
	if coupon != nil && coupon.Valid() {
		// Integer truncation keeps rounding deterministic.
		discount = discountBase * coupon.DiscountPct / 100
	}

	return Totals{
		SubtotalCents:    subtotal,
		DiscountCents:    discount,
		ShippingFeeCents: shippingFee,
		TotalCents:       discountBase - discount,
	}
}
