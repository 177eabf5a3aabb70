package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/checkout"
	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/internal/domain/storefront"
)

const maxBodySize = 1 << 20

// writeJSON encodes the body with fn and writes it with status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// readObject decodes a JSON object body, calling fn for every field.
func readObject(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return badRequest("failed to read request body")
	}
	if len(data) > maxBodySize {
		return badRequest("request body too large")
	}
	if len(data) == 0 {
		return badRequest("request body is required")
	}
	if err := jx.DecodeBytes(data).Obj(fn); err != nil {
		var re *requestError
		if errors.As(err, &re) {
			return re
		}
		return badRequest("malformed JSON: " + err.Error())
	}
	return nil
}

// optStr decodes a string that may be null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func encodeOptStr(e *jx.Encoder, s string) {
	if s == "" {
		e.Null()
		return
	}
	e.Str(s)
}

func field(e *jx.Encoder, name string, fn func(e *jx.Encoder)) {
	e.FieldStart(name)
	fn(e)
}

func strField(e *jx.Encoder, name, v string) {
	e.FieldStart(name)
	e.Str(v)
}

func intField(e *jx.Encoder, name string, v int64) {
	e.FieldStart(name)
	e.Int64(v)
}

func arr[T any](e *jx.Encoder, items []T, fn func(e *jx.Encoder, v T)) {
	e.ArrStart()
	for _, v := range items {
		fn(e, v)
	}
	e.ArrEnd()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	strField(e, "id", p.ID)
	strField(e, "title", p.Title)
	intField(e, "price", p.Price)
	intField(e, "stock", int64(p.Stock))
	strField(e, "description", p.Description)
	strField(e, "longDescription", p.LongDescription)
	strField(e, "image", p.Image)
	e.FieldStart("specialCoupon")
	encodeOptStr(e, p.SpecialCoupon)
	e.ObjEnd()
}

// decodeProduct reads the admin-editable product fields.
func decodeProduct(r *http.Request) (product.Product, error) {
	var p product.Product
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			p.Title, err = d.Str()
		case "price":
			p.Price, err = d.Int64()
		case "stock":
			p.Stock, err = d.Int()
		case "description":
			p.Description, err = optStr(d)
		case "longDescription":
			p.LongDescription, err = optStr(d)
		case "image":
			p.Image, err = optStr(d)
		case "specialCoupon":
			p.SpecialCoupon, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

func encodeCoupon(e *jx.Encoder, c coupon.Coupon) {
	e.ObjStart()
	strField(e, "id", c.ID)
	strField(e, "code", c.Code)
	strField(e, "type", string(c.Type))
	intField(e, "value", c.Value)
	strField(e, "description", c.Description)
	e.ObjEnd()
}

func encodeDescriptor(e *jx.Encoder, d coupon.Descriptor) {
	if d == nil {
		e.Null()
		return
	}
	e.ObjStart()
	strField(e, "code", d.Code())
	strField(e, "type", string(d.Kind()))
	intField(e, "value", d.Value())
	strField(e, "description", d.Description())
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	strField(e, "id", o.ID)
	strField(e, "tracking", o.Tracking)
	field(e, "items", func(e *jx.Encoder) {
		arr(e, o.Items, func(e *jx.Encoder, it order.LineItem) {
			e.ObjStart()
			strField(e, "productId", it.ProductID)
			strField(e, "title", it.Title)
			intField(e, "qty", int64(it.Quantity))
			intField(e, "price", it.Price)
			e.ObjEnd()
		})
	})
	intField(e, "subtotal", o.Subtotal)
	intField(e, "discount", o.Discount)
	intField(e, "total", o.Total)
	e.FieldStart("coupon")
	encodeOptStr(e, o.Coupon)
	strField(e, "paymentMethod", o.PaymentMethod)
	field(e, "customer", func(e *jx.Encoder) {
		e.ObjStart()
		strField(e, "name", o.Customer.Name)
		strField(e, "email", o.Customer.Email)
		strField(e, "phone", o.Customer.Phone)
		strField(e, "address", o.Customer.Address)
		e.ObjEnd()
	})
	strField(e, "status", string(o.Status))
	strField(e, "createdAt", o.CreatedAt.UTC().Format(time.RFC3339))
	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, orders []order.Order) {
	arr(e, orders, encodeOrder)
}

// decodeCustomer accepts either a composed address or its parts.
func decodeCustomer(d *jx.Decoder) (order.Customer, error) {
	var (
		c                            order.Customer
		street, city, postal, country string
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			c.Name, err = optStr(d)
		case "email":
			c.Email, err = optStr(d)
		case "phone":
			c.Phone, err = optStr(d)
		case "address":
			c.Address, err = optStr(d)
		case "street":
			street, err = optStr(d)
		case "city":
			city, err = optStr(d)
		case "postalCode":
			postal, err = optStr(d)
		case "country":
			country, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if c.Address == "" {
		c.Address = order.ComposeAddress(street, city, postal, country)
	}
	return c, err
}

func encodeSlide(e *jx.Encoder, s content.Slide) {
	e.ObjStart()
	strField(e, "id", s.ID)
	strField(e, "title", s.Title)
	strField(e, "subtitle", s.Subtitle)
	strField(e, "image", s.Image)
	e.ObjEnd()
}

func encodeFeature(e *jx.Encoder, f content.Feature) {
	e.ObjStart()
	strField(e, "id", f.ID)
	strField(e, "icon", f.Icon)
	strField(e, "title", f.Title)
	strField(e, "subtitle", f.Subtitle)
	e.ObjEnd()
}

func encodeSiteContent(e *jx.Encoder, c content.SiteContent) {
	e.ObjStart()
	strField(e, "footerAbout", c.FooterAbout)
	strField(e, "copyright", c.Copyright)
	e.ObjEnd()
}

func encodeSnapshot(e *jx.Encoder, s *storefront.Snapshot) {
	e.ObjStart()
	field(e, "products", func(e *jx.Encoder) { arr(e, s.Products, encodeProduct) })
	field(e, "orders", func(e *jx.Encoder) { encodeOrders(e, s.Orders) })
	field(e, "coupons", func(e *jx.Encoder) { arr(e, s.Coupons, encodeCoupon) })
	field(e, "slides", func(e *jx.Encoder) { arr(e, s.Slides, encodeSlide) })
	field(e, "features", func(e *jx.Encoder) { arr(e, s.Features, encodeFeature) })
	field(e, "content", func(e *jx.Encoder) { encodeSiteContent(e, s.Content) })
	e.ObjEnd()
}

func encodeStats(e *jx.Encoder, s *storefront.Stats) {
	e.ObjStart()
	intField(e, "products", int64(s.Products))
	intField(e, "coupons", int64(s.Coupons))
	intField(e, "orders", int64(s.Orders))
	intField(e, "pending", int64(s.Pending))
	intField(e, "revenue", s.Revenue)
	field(e, "recentOrders", func(e *jx.Encoder) { encodeOrders(e, s.Recent) })
	e.ObjEnd()
}

func encodeCartView(e *jx.Encoder, sid string, v *checkout.View) {
	e.ObjStart()
	strField(e, "session", sid)
	field(e, "items", func(e *jx.Encoder) {
		arr(e, v.Lines, func(e *jx.Encoder, l checkout.Line) {
			e.ObjStart()
			field(e, "product", func(e *jx.Encoder) { encodeProduct(e, l.Product) })
			intField(e, "qty", int64(l.Quantity))
			e.ObjEnd()
		})
	})
	intField(e, "count", int64(v.State.Cart.Count()))
	field(e, "coupon", func(e *jx.Encoder) { encodeDescriptor(e, v.State.Applied) })
	strField(e, "notice", v.State.Notice)
	intField(e, "subtotal", v.Price.Subtotal)
	intField(e, "discount", v.Price.Discount)
	intField(e, "total", v.Price.Total)
	e.ObjEnd()
}

// encodeMessage writes {"message": msg}.
func encodeMessage(msg string) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.ObjStart()
		strField(e, "message", msg)
		e.ObjEnd()
	}
}
