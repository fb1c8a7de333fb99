package domain

import "time"

// Cart represents a user's shopping cart. Lines reference catalog identities
// only; prices and names are resolved against the live catalog at read time,
// never frozen at add-to-cart time.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartLine is a quantity-bearing reference to one catalog identity. At most
// one line exists per (kind, item id) pair.
type CartLine struct {
	Kind     ItemKind `json:"kind"`
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
}

// FindLineIndex returns the index of the line matching the given identity,
// or -1 if no such line exists.
func (c *Cart) FindLineIndex(kind ItemKind, itemID string) int {
	for i := range c.Lines {
		if c.Lines[i].Kind == kind && c.Lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddLine adds quantity of the given identity to the cart. If a line with the
// same (kind, item id) already exists its quantity is incremented in place,
// preserving insertion order. A quantity of zero or less is a no-op.
func (c *Cart) AddLine(kind ItemKind, itemID string, quantity int) {
	if quantity <= 0 {
		return
	}
	if i := c.FindLineIndex(kind, itemID); i >= 0 {
		c.Lines[i].Quantity += quantity
		return
	}
	c.Lines = append(c.Lines, CartLine{Kind: kind, ItemID: itemID, Quantity: quantity})
}

// SetQuantity sets the quantity of an existing line. Quantities below one are
// ignored: removal is an explicit, separate operation so that a decrement at
// quantity 1 never silently deletes the line. A missing line is also a no-op.
func (c *Cart) SetQuantity(kind ItemKind, itemID string, quantity int) {
	if quantity < 1 {
		return
	}
	if i := c.FindLineIndex(kind, itemID); i >= 0 {
		c.Lines[i].Quantity = quantity
	}
}

// RemoveLine removes the line with the given identity. Removing an absent
// line is a no-op, which makes removal idempotent.
func (c *Cart) RemoveLine(kind ItemKind, itemID string) {
	if i := c.FindLineIndex(kind, itemID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// ClearLines empties the cart.
func (c *Cart) ClearLines() {
	c.Lines = []CartLine{}
}

// LineCount returns the total quantity across all lines.
func (c *Cart) LineCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
