package pricing

import (
	"strings"
	"sync"
)

// Coupon is a named discount percentage applicable at checkout.
type Coupon struct {
	Code        string
	DiscountPct int64
}

// Valid reports whether the coupon carries a usable percentage.
func (c Coupon) Valid() bool {
	return c.Code != "" && c.DiscountPct >= 0 && c.DiscountPct <= 100
}

// Registry is a fixed in-memory coupon lookup. Unknown codes are simply
// invalid, not an error.
type Registry struct {
	mu      sync.RWMutex
	coupons map[string]Coupon
}

// NewRegistry creates a registry seeded with the given coupons.
func NewRegistry(coupons ...Coupon) *Registry {
	r := &Registry{
		coupons: make(map[string]Coupon, len(coupons)),
	}
	for _, c := range coupons {
		r.Add(c)
	}
	return r
}

// Add registers a coupon. Codes are case-insensitive.
func (r *Registry) Add(c Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons[strings.ToUpper(c.Code)] = c
}

// Lookup returns the coupon for a code, if it exists and is valid.
func (r *Registry) Lookup(code string) (Coupon, bool) {
	if code == "" {
		return Coupon{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coupons[strings.ToUpper(code)]
	if !ok || !c.Valid() {
		return Coupon{}, false
	}
	return c, true
}
