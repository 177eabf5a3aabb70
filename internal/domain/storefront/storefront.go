// Package storefront aggregates the read side of the shop into single
// responses for the storefront bootstrap and the admin dashboard.
package storefront

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
)

// RecentOrders is the number of orders listed on the dashboard.
const RecentOrders = 5

// Snapshot is everything the storefront renders from.
type Snapshot struct {
	Products []product.Product
	Orders   []order.Order
	Coupons  []coupon.Coupon
	Slides   []content.Slide
	Features []content.Feature
	Content  content.SiteContent
}

// Stats is the admin dashboard summary.
type Stats struct {
	Products int
	Coupons  int
	Orders   int
	Pending  int
	Revenue  int64
	Recent   []order.Order
}

// Service reads from every store.
type Service struct {
	products product.Catalog
	orders   order.Repository
	coupons  coupon.Repository
	content  content.Repository
}

// NewService creates a storefront Service.
func NewService(products product.Catalog, orders order.Repository, coupons coupon.Repository, content content.Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
		coupons:  coupons,
		content:  content,
	}
}

// Snapshot loads all collections concurrently. Orders are newest first.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Products, err = s.products.List(ctx)
		return errors.Wrap(err, "list products")
	})
	g.Go(func() (err error) {
		snap.Orders, err = s.orders.List(ctx)
		return errors.Wrap(err, "list orders")
	})
	g.Go(func() (err error) {
		snap.Coupons, err = s.coupons.List(ctx)
		return errors.Wrap(err, "list coupons")
	})
	g.Go(func() (err error) {
		snap.Slides, err = s.content.ListSlides(ctx)
		return errors.Wrap(err, "list slides")
	})
	g.Go(func() (err error) {
		snap.Features, err = s.content.ListFeatures(ctx)
		return errors.Wrap(err, "list features")
	})
	g.Go(func() (err error) {
		snap.Content, err = s.content.SiteContent(ctx)
		return errors.Wrap(err, "get site content")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Stats computes the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		st      Stats
		summary order.Summary
		recent  []order.Order
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ps, err := s.products.List(ctx)
		st.Products = len(ps)
		return errors.Wrap(err, "list products")
	})
	g.Go(func() error {
		cs, err := s.coupons.List(ctx)
		st.Coupons = len(cs)
		return errors.Wrap(err, "list coupons")
	})
	g.Go(func() (err error) {
		summary, err = s.orders.Summary(ctx)
		return errors.Wrap(err, "summarize orders")
	})
	g.Go(func() (err error) {
		recent, err = s.orders.List(ctx)
		return errors.Wrap(err, "list orders")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	st.Orders = summary.Orders
	st.Pending = summary.Pending
	st.Revenue = summary.Revenue
	if len(recent) > RecentOrders {
		recent = recent[:RecentOrders]
	}
	st.Recent = recent
	return &st, nil
}
