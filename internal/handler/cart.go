package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/checkout"
	"github.com/xenking/brosmart/internal/domain/order"
)

const maxSessionLen = 64

// sessionID returns the {session} path parameter. Ids are client chosen,
// usually a UUID kept in local storage.
func sessionID(r *http.Request) (string, error) {
	sid := chi.URLParam(r, "session")
	if sid == "" || len(sid) > maxSessionLen {
		return "", badRequest("invalid session id")
	}
	for _, c := range []byte(sid) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return "", badRequest("invalid session id")
		}
	}
	return sid, nil
}

// cartOp runs op against the request session and writes the cart view.
func (h *Handler) cartOp(w http.ResponseWriter, r *http.Request, op func(sid string) (*checkout.View, error)) {
	sid, err := sessionID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, err := op(sid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCartView(e, sid, v) })
}

// GetCart handles GET /api/cart/{session}.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.cartOp(w, r, func(sid string) (*checkout.View, error) {
		return h.checkout.Get(r.Context(), sid)
	})
}

func decodeCartItem(r *http.Request) (productID string, qty int, err error) {
	qty = 1
	err = readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			productID, err = d.Str()
		case "qty":
			qty, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return productID, qty, err
}

// AddCartItem handles POST /api/cart/{session}/items with
// {"productId", "qty"}. qty defaults to 1.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	h.cartOp(w, r, func(sid string) (*checkout.View, error) {
		productID, qty, err := decodeCartItem(r)
		if err != nil {
			return nil, err
		}
		if productID == "" {
			return nil, badRequest("productId is required")
		}
		if qty <= 0 {
			return nil, badRequest("qty must be positive")
		}
		return h.checkout.AddItem(r.Context(), sid, productID, qty)
	})
}

// SetCartQuantity handles PUT /api/cart/{session}/items/{productId} with
// {"qty"}. A zero qty removes the item.
func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	h.cartOp(w, r, func(sid string) (*checkout.View, error) {
		_, qty, err := decodeCartItem(r)
		if err != nil {
			return nil, err
		}
		return h.checkout.SetQuantity(r.Context(), sid, chi.URLParam(r, "productId"), qty)
	})
}

// ApplyCartCoupon handles POST /api/cart/{session}/coupon with {"code"}.
// Invalid codes are reported through the cart notice, not as an error.
func (h *Handler) ApplyCartCoupon(w http.ResponseWriter, r *http.Request) {
	h.cartOp(w, r, func(sid string) (*checkout.View, error) {
		var code string
		if err := readObject(r, func(d *jx.Decoder, key string) error {
			if key == "code" {
				var err error
				code, err = optStr(d)
				return err
			}
			return d.Skip()
		}); err != nil {
			return nil, err
		}
		return h.checkout.ApplyCoupon(r.Context(), sid, code)
	})
}

// ClearCartCoupon handles DELETE /api/cart/{session}/coupon.
func (h *Handler) ClearCartCoupon(w http.ResponseWriter, r *http.Request) {
	h.cartOp(w, r, func(sid string) (*checkout.View, error) {
		return h.checkout.ClearCoupon(r.Context(), sid)
	})
}

// Checkout handles POST /api/cart/{session}/checkout with {"customer"}.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var customer order.Customer
	if err := readObject(r, func(d *jx.Decoder, key string) error {
		if key == "customer" {
			var err error
			customer, err = decodeCustomer(d)
			return err
		}
		return d.Skip()
	}); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.checkout.Checkout(r.Context(), sid, customer)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, *o) })
}
