package checkout

import "kasir/internal/domain"

// Line is one cart position: a product with a strictly positive quantity
type Line struct {
	Product  domain.Product
	Quantity int64
}

// Cart is an ordered list of lines, at most one per product. Order is
// insertion order and only matters for stable display. A Cart is owned by
// a single session; it does no locking of its own.
type Cart struct {
	lines []Line
}

// Add merges quantity into an existing line or appends a new one.
// Non-positive quantities are rejected as a no-op.
func (c *Cart) Add(p domain.Product, quantity int64) bool {
	if quantity <= 0 {
		return false
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity += quantity
			return true
		}
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: quantity})
	return true
}

// SetQuantity sets a line to exactly quantity; quantity <= 0 removes the
// line. Unlike Add this is absolute, matching the +/- stepper gesture.
func (c *Cart) SetQuantity(productID string, quantity int64) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Remove drops a line; removing an absent product is a no-op
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Lines returns a copy for display and projection
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity returns the current quantity for a product, 0 when absent
func (c *Cart) Quantity(productID string) int64 {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return c.lines[i].Quantity
		}
	}
	return 0
}
