// Package checkout owns the per-visitor shopping session: the cart, the
// applied discount and the last user-facing notice.
//
// Transitions are pure functions from one State to the next; the Service
// loads a State from a SessionStore, applies a transition and saves it back.
package checkout

import (
	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
)

// NoticeInvalidCoupon is shown when a code resolves to nothing.
const NoticeInvalidCoupon = "Invalid coupon"

// State is a checkout session snapshot. Transitions never modify their
// input.
type State struct {
	Cart    *cart.Cart
	Applied coupon.Descriptor
	Notice  string
}

// NewState returns an empty session.
func NewState() State {
	return State{Cart: cart.New()}
}

func (s State) clone() State {
	c := s.Cart
	if c == nil {
		c = cart.New()
	} else {
		c = c.Clone()
	}
	return State{Cart: c, Applied: s.Applied, Notice: s.Notice}
}

// AddItem adds qty units of p, enforcing the advisory stock ceiling.
func AddItem(s State, p *product.Product, qty int) State {
	next := s.clone()
	next.Notice = string(next.Cart.Add(p, qty))
	return next
}

// SetQuantity replaces the quantity of p. Unknown products leave the state
// unchanged apart from clearing the notice. Removing the product that
// granted an applied special reward also drops the reward.
func SetQuantity(s State, p *product.Product, qty int) State {
	next := s.clone()
	next.Notice = string(next.Cart.SetQuantity(p, qty))
	if r, ok := next.Applied.(coupon.SpecialReward); ok && next.Cart.Quantity(r.ProductID) == 0 {
		next.Applied = nil
	}
	return next
}

// ApplyCoupon records the outcome of resolving a code. A nil descriptor
// means the code was invalid and clears any previous discount.
func ApplyCoupon(s State, d coupon.Descriptor) State {
	next := s.clone()
	if d == nil {
		next.Applied = nil
		next.Notice = NoticeInvalidCoupon
		return next
	}
	next.Applied = d
	next.Notice = "Applied " + d.Code()
	return next
}

// ClearCoupon removes the applied discount.
func ClearCoupon(s State) State {
	next := s.clone()
	next.Applied = nil
	next.Notice = ""
	return next
}

// OrderPlaced empties the cart and drops the discount after a successful
// placement.
func OrderPlaced(s State, o *order.Order) State {
	next := s.clone()
	next.Cart.Clear()
	next.Applied = nil
	next.Notice = "Order placed! Tracking: " + o.Tracking
	return next
}
