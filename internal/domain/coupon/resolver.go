package coupon

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/product"
)

// Resolver turns a user-entered code into a discount Descriptor.
type Resolver struct {
	coupons  Repository
	products product.Catalog
}

// NewResolver creates a Resolver that consults the coupon catalog first and
// the special codes of products in the cart second.
func NewResolver(coupons Repository, products product.Catalog) *Resolver {
	return &Resolver{coupons: coupons, products: products}
}

// Resolve returns the Descriptor for code given the cart entries.
//
// Catalog coupons take precedence. Otherwise the first cart entry (in cart
// order) whose product carries a matching special coupon yields a fixed
// SpecialReward. ErrInvalidCoupon is returned when nothing matches; callers
// must then clear any previously applied discount.
func (r *Resolver) Resolve(ctx context.Context, code string, entries []cart.Entry) (Descriptor, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrInvalidCoupon
	}

	c, err := r.coupons.FindByCode(ctx, normalized)
	switch {
	case err == nil:
		return CatalogCoupon{Coupon: *c}, nil
	case !errors.Is(err, ErrInvalidCoupon):
		return nil, errors.Wrap(err, "lookup coupon")
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Quantity > 0 {
			ids = append(ids, e.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrInvalidCoupon
	}

	fetched, err := r.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get cart products")
	}
	special := make(map[string]string, len(fetched))
	for _, p := range fetched {
		if p.SpecialCoupon != "" {
			special[p.ID] = NormalizeCode(p.SpecialCoupon)
		}
	}

	for _, id := range ids {
		if special[id] == normalized {
			return NewSpecialReward(normalized, id), nil
		}
	}

	return nil, ErrInvalidCoupon
}
