// Package cart implements the shopping cart: an insertion-ordered mapping of
// product id to a positive quantity.
//
// Stock ceilings enforced here are advisory, based on whatever product
// snapshot the caller passes in. The authoritative check happens when the
// order is placed.
package cart

import (
	"fmt"
	"math"
	"slices"

	"github.com/xenking/brosmart/internal/domain/product"
)

// Notice is a user-facing message produced by a cart mutation.
type Notice string

const (
	NoticeNone       Notice = ""
	NoticeAdded      Notice = "Added to cart"
	NoticeOutOfStock Notice = "Out of Stock!"
	NoticeMaxStock   Notice = "Max stock reached in cart."
)

// NoticeCapped is returned when SetQuantity clamps to the stock limit.
func NoticeCapped(stock int) Notice {
	return Notice(fmt.Sprintf("Quantity capped at stock limit: %d", stock))
}

// Entry is one cart line.
type Entry struct {
	ProductID string
	Quantity  int
}

// Cart holds product quantities. The zero value is not usable; use New.
type Cart struct {
	order []string
	qty   map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// FromEntries builds a cart from entries, merging duplicate product ids and
// skipping non-positive quantities. Merged quantities saturate at
// math.MaxInt. No stock checks are applied.
func FromEntries(entries []Entry) *Cart {
	c := New()
	for _, e := range entries {
		if e.Quantity <= 0 || e.ProductID == "" {
			continue
		}
		cur := c.qty[e.ProductID]
		if e.Quantity > math.MaxInt-cur {
			c.set(e.ProductID, math.MaxInt)
			continue
		}
		c.set(e.ProductID, cur+e.Quantity)
	}
	return c
}

// Add puts qty units of p into the cart, capped so the cart never holds more
// than p.Stock. A nil or sold-out product leaves the cart unchanged.
func (c *Cart) Add(p *product.Product, qty int) Notice {
	if p == nil || !p.InStock() {
		return NoticeOutOfStock
	}
	if qty <= 0 {
		qty = 1
	}
	current := c.qty[p.ID]
	if qty > p.Stock-current {
		qty = p.Stock - current
		if qty <= 0 {
			return NoticeMaxStock
		}
	}
	c.set(p.ID, current+qty)
	return NoticeAdded
}

// SetQuantity replaces the quantity of p, capped to p.Stock. A quantity of
// zero or less removes the entry.
func (c *Cart) SetQuantity(p *product.Product, qty int) Notice {
	if p == nil {
		return NoticeNone
	}
	notice := NoticeNone
	if qty > p.Stock {
		qty = p.Stock
		notice = NoticeCapped(p.Stock)
	}
	if qty <= 0 {
		c.Remove(p.ID)
		return notice
	}
	c.set(p.ID, qty)
	return notice
}

// Remove deletes the entry for id if present.
func (c *Cart) Remove(id string) {
	if _, ok := c.qty[id]; !ok {
		return
	}
	delete(c.qty, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
}

func (c *Cart) set(id string, qty int) {
	if _, ok := c.qty[id]; !ok {
		c.order = append(c.order, id)
	}
	c.qty[id] = qty
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.order = nil
	clear(c.qty)
}

// Quantity returns the quantity held for id, or 0.
func (c *Cart) Quantity(id string) int {
	return c.qty[id]
}

// Entries returns the cart lines in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{ProductID: id, Quantity: c.qty[id]})
	}
	return out
}

// ProductIDs returns the product ids in insertion order.
func (c *Cart) ProductIDs() []string {
	return slices.Clone(c.order)
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.order)
}

// Count returns the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Clone returns an independent copy.
func (c *Cart) Clone() *Cart {
	return FromEntries(c.Entries())
}
