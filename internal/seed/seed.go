// Package seed loads the sample storefront: catalog, coupons, hero slides,
// feature tiles and footer copy. Each collection is filled only while it is
// empty, so seeding an existing store is a no-op.
package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/pricing"
	"github.com/xenking/brosmart/internal/domain/product"
)

// Stores are the targets of Apply.
type Stores struct {
	Products product.Repository
	Coupons  coupon.Repository
	Content  content.Repository
}

// ParseProducts decodes a catalog file. Prices are major-unit decimal
// strings such as "19.99".
func ParseProducts(data []byte) ([]product.Product, error) {
	var out []product.Product
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var p product.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Str()
			case "title":
				p.Title, err = d.Str()
			case "price":
				var s string
				if s, err = d.Str(); err != nil {
					return err
				}
				if p.Price, err = pricing.ParseMajor(s); err != nil {
					return errors.Wrapf(err, "price %q", s)
				}
			case "stock":
				p.Stock, err = d.Int()
			case "description":
				p.Description, err = d.Str()
			case "longDescription":
				p.LongDescription, err = d.Str()
			case "image":
				p.Image, err = d.Str()
			case "specialCoupon":
				if d.Next() == jx.Null {
					return d.Null()
				}
				p.SpecialCoupon, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "product %s", p.ID)
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse products")
	}
	return out, nil
}

// Coupons are the sample catalog coupons.
func Coupons() []coupon.Coupon {
	return []coupon.Coupon{
		{ID: "C1", Code: "WELCOME10", Type: pricing.KindPercent, Value: 10, Description: "10% off new customers"},
		{ID: "C2", Code: "FLAT200", Type: pricing.KindFixed, Value: 200, Description: "৳2.00 off"},
	}
}

// Slides are the sample hero slides.
func Slides() []content.Slide {
	return []content.Slide{
		{ID: "S1", Title: "Autumn Collection", Subtitle: "Premium fabrics", Image: "https://picsum.photos/seed/hero1/1400/500"},
		{ID: "S2", Title: "Running Gear", Subtitle: "Lightweight & breathable", Image: "https://picsum.photos/seed/hero2/1400/500"},
	}
}

// Features are the default homepage tiles.
func Features() []content.Feature {
	return []content.Feature{
		{ID: "F1", Icon: "fa-truck-fast", Title: "Free Shipping", Subtitle: "On all orders above ৳5000"},
		{ID: "F2", Icon: "fa-handshake", Title: "Cash on Delivery", Subtitle: "Pay with cash at your door"},
		{ID: "F3", Icon: "fa-star", Title: "Best Quality Products", Subtitle: "Hand-picked premium wear"},
	}
}

// SiteContent is the default footer copy.
func SiteContent() content.SiteContent {
	return content.SiteContent{
		FooterAbout: "Your one-stop destination for quality products at unbeatable prices. We offer a seamless shopping experience and quick delivery.",
		Copyright:   "© 2025 BrosMart. All rights reserved.",
	}
}

// Report counts what Apply inserted.
type Report struct {
	Products int
	Coupons  int
	Slides   int
	Features int
	Content  bool
}

// Apply fills every empty collection with the sample data.
func Apply(ctx context.Context, s Stores, products []product.Product) (r Report, err error) {
	existing, err := s.Products.List(ctx)
	if err != nil {
		return r, errors.Wrap(err, "list products")
	}
	if len(existing) == 0 {
		for i := range products {
			if err := s.Products.Create(ctx, &products[i]); err != nil {
				return r, errors.Wrapf(err, "create product %s", products[i].ID)
			}
		}
		r.Products = len(products)
	}

	coupons, err := s.Coupons.List(ctx)
	if err != nil {
		return r, errors.Wrap(err, "list coupons")
	}
	if len(coupons) == 0 {
		for _, c := range Coupons() {
			if err := s.Coupons.Create(ctx, &c); err != nil {
				return r, errors.Wrapf(err, "create coupon %s", c.Code)
			}
		}
		r.Coupons = len(Coupons())
	}

	slides, err := s.Content.ListSlides(ctx)
	if err != nil {
		return r, errors.Wrap(err, "list slides")
	}
	if len(slides) == 0 {
		for _, sl := range Slides() {
			if err := s.Content.CreateSlide(ctx, sl); err != nil {
				return r, errors.Wrapf(err, "create slide %s", sl.ID)
			}
		}
		r.Slides = len(Slides())
	}

	features, err := s.Content.ListFeatures(ctx)
	if err != nil {
		return r, errors.Wrap(err, "list features")
	}
	if len(features) == 0 {
		for _, f := range Features() {
			if err := s.Content.CreateFeature(ctx, f); err != nil {
				return r, errors.Wrapf(err, "create feature %s", f.ID)
			}
		}
		r.Features = len(Features())
	}

	site, err := s.Content.SiteContent(ctx)
	if err != nil {
		return r, errors.Wrap(err, "get site content")
	}
	if site == (content.SiteContent{}) {
		if err := s.Content.UpsertSiteContent(ctx, SiteContent()); err != nil {
			return r, errors.Wrap(err, "upsert site content")
		}
		r.Content = true
	}
	return r, nil
}
