package checkout

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/pricing"
)

const (
	descriptorCatalog = "catalog"
	descriptorSpecial = "special"
)

// Encode writes s as JSON. The applied descriptor keeps its variant so a
// special reward is not confused with a catalog coupon of the same value.
func (s State) Encode(e *jx.Encoder) {
	e.ObjStart()

	e.FieldStart("cart")
	e.ArrStart()
	if s.Cart != nil {
		for _, entry := range s.Cart.Entries() {
			e.ObjStart()
			e.FieldStart("productId")
			e.Str(entry.ProductID)
			e.FieldStart("qty")
			e.Int(entry.Quantity)
			e.ObjEnd()
		}
	}
	e.ArrEnd()

	e.FieldStart("applied")
	switch d := s.Applied.(type) {
	case coupon.CatalogCoupon:
		e.ObjStart()
		e.FieldStart("kind")
		e.Str(descriptorCatalog)
		e.FieldStart("id")
		e.Str(d.Coupon.ID)
		e.FieldStart("code")
		e.Str(d.Coupon.Code)
		e.FieldStart("type")
		e.Str(string(d.Coupon.Type))
		e.FieldStart("value")
		e.Int64(d.Coupon.Value)
		e.FieldStart("description")
		e.Str(d.Coupon.Description)
		e.ObjEnd()
	case coupon.SpecialReward:
		e.ObjStart()
		e.FieldStart("kind")
		e.Str(descriptorSpecial)
		e.FieldStart("code")
		e.Str(d.Code())
		e.FieldStart("productId")
		e.Str(d.ProductID)
		e.ObjEnd()
	default:
		e.Null()
	}

	e.FieldStart("notice")
	e.Str(s.Notice)

	e.ObjEnd()
}

// Decode reads a State written by Encode.
func (s *State) Decode(d *jx.Decoder) error {
	var entries []cart.Entry
	*s = State{}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cart":
			return d.Arr(func(d *jx.Decoder) error {
				var entry cart.Entry
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						entry.ProductID, err = d.Str()
					case "qty":
						entry.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
		case "applied":
			if d.Next() == jx.Null {
				return d.Null()
			}
			applied, err := decodeDescriptor(d)
			if err != nil {
				return errors.Wrap(err, "applied")
			}
			s.Applied = applied
			return nil
		case "notice":
			v, err := d.Str()
			s.Notice = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return errors.Wrap(err, "decode session")
	}

	s.Cart = cart.FromEntries(entries)
	return nil
}

func decodeDescriptor(d *jx.Decoder) (coupon.Descriptor, error) {
	var (
		kind      string
		c         coupon.Coupon
		productID string
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "kind":
			kind, err = d.Str()
		case "id":
			c.ID, err = d.Str()
		case "code":
			c.Code, err = d.Str()
		case "type":
			var v string
			v, err = d.Str()
			c.Type = pricing.Kind(v)
		case "value":
			c.Value, err = d.Int64()
		case "description":
			c.Description, err = d.Str()
		case "productId":
			productID, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	switch kind {
	case descriptorCatalog:
		return coupon.CatalogCoupon{Coupon: c}, nil
	case descriptorSpecial:
		return coupon.NewSpecialReward(c.Code, productID), nil
	default:
		return nil, errors.Errorf("unknown descriptor kind %q", kind)
	}
}
