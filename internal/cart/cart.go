package cart

import "time"

// Cart is one owner's in-progress, uncommitted selection. Lines keep
// insertion order and hold at most one entry per product.
type Cart struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	Lines     []Line    `bson:"lines" json:"lines"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Line is one product+quantity pair. A line with quantity zero does not
// exist; it is removed, never stored.
type Line struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// FindLine returns the index of the line for a product, or -1.
func (c *Cart) FindLine(productID int64) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
