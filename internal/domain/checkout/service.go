package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/pricing"
	"github.com/xenking/brosmart/internal/domain/product"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// SessionStore persists checkout sessions.
type SessionStore interface {
	// Load returns the stored state, or a fresh NewState when the session
	// does not exist or has expired.
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, s State, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Resolver resolves coupon codes against a cart.
type Resolver interface {
	Resolve(ctx context.Context, code string, entries []cart.Entry) (coupon.Descriptor, error)
}

// Placer runs the order placement pipeline.
type Placer interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
}

// Line is a cart entry joined with its current catalog record.
type Line struct {
	Product  product.Product
	Quantity int
}

// View is a session together with its price preview.
type View struct {
	State State
	Lines []Line
	Price pricing.Breakdown
}

// Service runs checkout transitions against stored sessions.
type Service struct {
	sessions SessionStore
	products product.Catalog
	coupons  Resolver
	orders   Placer
	ttl      time.Duration
}

// NewService creates a checkout Service. A non-positive ttl selects
// DefaultTTL.
func NewService(sessions SessionStore, products product.Catalog, coupons Resolver, orders Placer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		sessions: sessions,
		products: products,
		coupons:  coupons,
		orders:   orders,
		ttl:      ttl,
	}
}

// Get returns the current session.
func (s *Service) Get(ctx context.Context, sid string) (*View, error) {
	st, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	return s.view(ctx, st)
}

// AddItem adds qty units of a product. Unknown products produce the out of
// stock notice.
func (s *Service) AddItem(ctx context.Context, sid, productID string, qty int) (*View, error) {
	return s.update(ctx, sid, func(st State) (State, error) {
		p, err := s.lookup(ctx, productID)
		if err != nil {
			return st, err
		}
		return AddItem(st, p, qty), nil
	})
}

// SetQuantity replaces the quantity of a product in the cart.
func (s *Service) SetQuantity(ctx context.Context, sid, productID string, qty int) (*View, error) {
	return s.update(ctx, sid, func(st State) (State, error) {
		p, err := s.lookup(ctx, productID)
		if err != nil {
			return st, err
		}
		if p == nil {
			// The product is gone from the catalog; drop it from the cart.
			next := st.clone()
			next.Cart.Remove(productID)
			next.Notice = ""
			return next, nil
		}
		return SetQuantity(st, p, qty), nil
	})
}

// ApplyCoupon resolves code against the session cart. An invalid code is
// not an error: it clears the discount and sets the invalid notice.
func (s *Service) ApplyCoupon(ctx context.Context, sid, code string) (*View, error) {
	return s.update(ctx, sid, func(st State) (State, error) {
		d, err := s.coupons.Resolve(ctx, code, st.Cart.Entries())
		switch {
		case err == nil:
			return ApplyCoupon(st, d), nil
		case errors.Is(err, coupon.ErrInvalidCoupon):
			return ApplyCoupon(st, nil), nil
		default:
			return st, errors.Wrap(err, "resolve coupon")
		}
	})
}

// ClearCoupon drops the applied discount.
func (s *Service) ClearCoupon(ctx context.Context, sid string) (*View, error) {
	return s.update(ctx, sid, func(st State) (State, error) {
		return ClearCoupon(st), nil
	})
}

// Checkout places an order for the session cart with the applied discount.
// The session is removed on success and left untouched on failure.
func (s *Service) Checkout(ctx context.Context, sid string, customer order.Customer) (*order.Order, error) {
	st, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	o, err := s.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		Items:    st.Cart.Entries(),
		Discount: st.Applied,
		Customer: customer,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sid); err != nil {
		// The order is committed; a stale cart is only cosmetic.
		zctx.From(ctx).Warn("Failed to clear checkout session",
			zap.String("session", sid),
			zap.Error(err),
		)
	}
	return o, nil
}

func (s *Service) update(ctx context.Context, sid string, fn func(State) (State, error)) (*View, error) {
	st, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	next, err := fn(st)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sid, next, s.ttl); err != nil {
		return nil, errors.Wrap(err, "save session")
	}
	return s.view(ctx, next)
}

// lookup returns nil without error for unknown products.
func (s *Service) lookup(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return p, nil
}

func (s *Service) view(ctx context.Context, st State) (*View, error) {
	v := &View{State: st}
	if st.Cart.Len() == 0 {
		return v, nil
	}

	fetched, err := s.products.GetByIDs(ctx, st.Cart.ProductIDs())
	if err != nil {
		return nil, errors.Wrap(err, "get cart products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	lines := make([]pricing.Line, 0, st.Cart.Len())
	for _, e := range st.Cart.Entries() {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		v.Lines = append(v.Lines, Line{Product: p, Quantity: e.Quantity})
		lines = append(lines, pricing.Line{UnitPrice: p.Price, Quantity: e.Quantity})
	}
	v.Price = pricing.Compute(lines, st.Applied)
	return v, nil
}
