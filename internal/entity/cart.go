package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidCart reports a cart that breaks the one-entry-per-product or
// positive-quantity rules.
var ErrInvalidCart = errors.New("invalid cart")

// CartEntry is one product-quantity pairing within a cart.
// The JSON shape matches what the storefront has always persisted.
type CartEntry struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

// Cart is the ordered list of entries, in first-added order.
// It holds at most one entry per product.
type Cart []CartEntry

// Validate checks that every entry has a quantity of at least 1 and that no
// product appears twice.
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for i, entry := range c {
		if entry.Quantity < 1 {
			return fmt.Errorf("%w: entry %d has quantity %d", ErrInvalidCart, i, entry.Quantity)
		}
		if _, dup := seen[entry.ProductID]; dup {
			return fmt.Errorf("%w: product %d appears more than once", ErrInvalidCart, entry.ProductID)
		}
		seen[entry.ProductID] = struct{}{}
	}
	return nil
}

// Index returns the position of the entry for productID, or -1.
func (c Cart) Index(productID int) int {
	for i, entry := range c {
		if entry.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the entry for productID, appending a new entry
// when the product is not in the cart yet. Non-positive quantities are ignored.
func (c *Cart) Add(productID, quantity int) bool {
	if quantity < 1 {
		return false
	}
	if i := c.Index(productID); i >= 0 {
		(*c)[i].Quantity += quantity
		return true
	}
	*c = append(*c, CartEntry{ProductID: productID, Quantity: quantity})
	return true
}

// SetQuantity replaces the quantity of an existing entry.
// Quantities below 1 and unknown products leave the cart untouched.
func (c Cart) SetQuantity(productID, quantity int) bool {
	if quantity < 1 {
		return false
	}
	i := c.Index(productID)
	if i < 0 {
		return false
	}
	c[i].Quantity = quantity
	return true
}

// Remove deletes the entry for productID, keeping the order of the rest.
func (c *Cart) Remove(productID int) bool {
	i := c.Index(productID)
	if i < 0 {
		return false
	}
	*c = append((*c)[:i], (*c)[i+1:]...)
	return true
}

// TotalItems is the sum of all quantities, shown on the cart badge.
func (c Cart) TotalItems() int {
	total := 0
	for _, entry := range c {
		total += entry.Quantity
	}
	return total
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
