package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/pricing"
)

// placeOrderBody is the POST /api/orders payload. Titles, prices and totals
// sent by the client are advisory; the server prices from the catalog.
type placeOrderBody struct {
	Items    []cart.Entry
	Customer order.Customer
	Coupon   string
	Client   pricing.Breakdown
	hasTotal bool
}

func decodePlaceOrder(r *http.Request) (placeOrderBody, error) {
	var b placeOrderBody
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var e cart.Entry
				if err := d.Obj(func(d *jx.Decoder, key string) error {
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
				}); err != nil {
					return err
				}
				if e.Quantity <= 0 {
					return badRequest("item quantity must be positive")
				}
				b.Items = append(b.Items, e)
				return nil
			})
		case "customer":
			b.Customer, err = decodeCustomer(d)
		case "coupon", "couponCode":
			b.Coupon, err = optStr(d)
		case "subtotal":
			b.Client.Subtotal, err = d.Int64()
		case "discount":
			b.Client.Discount, err = d.Int64()
		case "total":
			b.Client.Total, err = d.Int64()
			b.hasTotal = true
		default:
			err = d.Skip()
		}
		return err
	})
	return b, err
}

// PlaceOrder handles POST /api/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	body, err := decodePlaceOrder(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var discount coupon.Descriptor
	if strings.TrimSpace(body.Coupon) != "" {
		discount, err = h.resolver.Resolve(ctx, body.Coupon, body.Items)
		switch {
		case errors.Is(err, coupon.ErrInvalidCoupon):
			lg.Warn("Dropping invalid coupon from order", zap.String("coupon", body.Coupon))
			discount = nil
		case err != nil:
			respondError(w, r, errors.Wrap(err, "resolve coupon"))
			return
		}
	}

	o, err := h.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		Items:    body.Items,
		Discount: discount,
		Customer: body.Customer,
	})
	if err != nil {
		if errors.Is(err, order.ErrOutOfStock) {
			lg.Info("Order rejected", zap.Error(err))
		}
		respondError(w, r, err)
		return
	}

	if body.hasTotal && (body.Client.Total != o.Total || body.Client.Discount != o.Discount) {
		lg.Warn("Client totals differ from server pricing",
			zap.String("order_id", o.ID),
			zap.Int64("client_total", body.Client.Total),
			zap.Int64("total", o.Total),
			zap.Int64("client_discount", body.Client.Discount),
			zap.Int64("discount", o.Discount),
		)
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) })
}

// TrackOrder handles GET /api/orders/track/{tracking}.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Track(r.Context(), chi.URLParam(r, "tracking"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

// MarkShipped handles PUT /api/orders/{id}/shipped.
func (h *Handler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkShipped(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}
