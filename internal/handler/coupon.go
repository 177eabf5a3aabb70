package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/ident"
	"github.com/xenking/brosmart/internal/domain/pricing"
)

// ValidateCoupon handles POST /api/coupons/validate with
// {"code", "items": [{"productId", "qty"}]}.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var (
		code    string
		entries []cart.Entry
	)
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = optStr(d)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var e cart.Entry
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId", "id":
						e.ProductID, err = d.Str()
					case "qty", "quantity":
						e.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				})
				entries = append(entries, e)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	d, err := h.resolver.Resolve(r.Context(), code, entries)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		field(e, "coupon", func(e *jx.Encoder) { encodeDescriptor(e, d) })
		e.ObjEnd()
	})
}

// ListCoupons handles GET /api/coupons.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list coupons"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { arr(e, coupons, encodeCoupon) })
}

// CreateCoupon handles POST /api/coupons. Codes are stored normalized.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupon.Coupon
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			c.Code, err = d.Str()
		case "type":
			var kind string
			kind, err = d.Str()
			c.Type = pricing.Kind(kind)
		case "value":
			c.Value, err = d.Int64()
		case "description":
			c.Description, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.Code = coupon.NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	c.ID = ident.New("C")

	if err := h.coupons.Create(r.Context(), &c); err != nil {
		if !errors.Is(err, coupon.ErrDuplicateCode) {
			err = errors.Wrap(err, "create coupon")
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCoupon(e, c) })
}

// DeleteCoupon handles DELETE /api/coupons/{id}.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
