package order

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/brosmart/internal/domain/cart"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/pricing"
	"github.com/xenking/brosmart/internal/domain/product"
)

const instrumentationName = "github.com/xenking/brosmart/internal/domain/order"

// trackingAttempts bounds how many tracking codes PlaceOrder draws when the
// store reports a collision.
const trackingAttempts = 3

// Products is the catalog view the pipeline needs: batch reads plus the
// atomic stock primitive.
type Products interface {
	product.Catalog
	product.Inventory
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items []cart.Entry
	// Discount is the descriptor applied during checkout. It is not
	// re-resolved here; nil means no discount.
	Discount coupon.Descriptor
	Customer Customer
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider sets the tracer provider used for pipeline spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tp = tp }
}

// WithMeterProvider sets the meter provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.mp = mp }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service encapsulates order placement and fulfilment.
type Service struct {
	products Products
	orders   Repository
	now      func() time.Time

	tp       trace.TracerProvider
	mp       metric.MeterProvider
	tracer   trace.Tracer
	placed   metric.Int64Counter
	rejected metric.Int64Counter
}

// NewService creates an order Service.
func NewService(products Products, orders Repository, opts ...Option) (*Service, error) {
	s := &Service{
		products: products,
		orders:   orders,
		now:      time.Now,
		tp:       tracenoop.NewTracerProvider(),
		mp:       metricnoop.NewMeterProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.tracer = s.tp.Tracer(instrumentationName)
	meter := s.mp.Meter(instrumentationName)

	var err error
	if s.placed, err = meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders committed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	if s.rejected, err = meter.Int64Counter("orders.rejected",
		metric.WithDescription("Order attempts rejected, by reason"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.rejected counter")
	}
	return s, nil
}

// PlaceOrder validates the cart, snapshots line items from the catalog,
// prices them, reserves stock all-or-nothing and persists the order.
//
// Reservation decrements each product with an atomic conditional update in
// product id order. On the first failure every decrement already applied is
// compensated and ErrOutOfStock is returned. A failed order write also
// releases the reservation, so resubmitting is always safe stock-wise.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(rerr))))
		}
		span.End()
	}()

	c := cart.FromEntries(req.Items)
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	for _, e := range c.Entries() {
		if e.Quantity <= 0 {
			return nil, &ValidationError{Field: "items", Reason: "quantity must be positive"}
		}
	}
	if err := req.Customer.Validate(); err != nil {
		return nil, err
	}

	items, err := s.snapshot(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity}
	}
	price := pricing.Compute(lines, req.Discount)
	span.SetAttributes(
		attribute.Int("order.items", len(items)),
		attribute.Int64("order.total", price.Total),
	)

	if err := s.reserve(ctx, items); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:            uuid.New().String(),
		Items:         items,
		Subtotal:      price.Subtotal,
		Discount:      price.Discount,
		Total:         price.Total,
		PaymentMethod: PaymentCashOnDelivery,
		Customer:      normalizeCustomer(req.Customer),
		Status:        StatusPending,
		CreatedAt:     now,
	}
	if req.Discount != nil {
		o.Coupon = req.Discount.Code()
	}

	if err := s.create(ctx, o); err != nil {
		s.release(ctx, items)
		return nil, &PersistenceError{Op: "create order", Err: err}
	}

	s.placed.Add(ctx, 1)
	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("tracking", o.Tracking),
		zap.Int64("total", o.Total),
	)
	return o, nil
}

// create persists o under a fresh tracking code, drawing a new one when the
// store reports a collision.
func (s *Service) create(ctx context.Context, o *Order) error {
	var err error
	for range trackingAttempts {
		o.Tracking = NewTracking(o.CreatedAt)
		if err = s.orders.Create(ctx, o); !errors.Is(err, ErrDuplicateTracking) {
			return err
		}
		zctx.From(ctx).Warn("Tracking code collision, retrying", zap.String("tracking", o.Tracking))
	}
	return err
}

// snapshot resolves cart entries against the catalog. Entries whose product
// no longer exists are dropped instead of failing the order.
func (s *Service) snapshot(ctx context.Context, c *cart.Cart) ([]LineItem, error) {
	fetched, err := s.products.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, &PersistenceError{Op: "get products", Err: err}
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]LineItem, 0, c.Len())
	for _, e := range c.Entries() {
		p, ok := byID[e.ProductID]
		if !ok {
			zctx.From(ctx).Warn("Dropping unknown product from order", zap.String("product_id", e.ProductID))
			continue
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  e.Quantity,
			Price:     p.Price,
		})
	}
	return items, nil
}

// reserve decrements stock for every item or for none of them.
func (s *Service) reserve(ctx context.Context, items []LineItem) error {
	ordered := slices.Clone(items)
	slices.SortFunc(ordered, func(a, b LineItem) int { return strings.Compare(a.ProductID, b.ProductID) })

	for i, it := range ordered {
		err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil {
			continue
		}
		s.release(ctx, ordered[:i])
		switch {
		case errors.Is(err, product.ErrInsufficientStock), errors.Is(err, product.ErrNotFound):
			return ErrOutOfStock
		case errors.Is(err, product.ErrInvalidQuantity):
			return &ValidationError{Field: "items", Reason: "quantity must be positive"}
		}
		return &PersistenceError{Op: "reserve stock", Err: err}
	}
	return nil
}

// release issues compensating increments. It runs detached from request
// cancellation so a dropped client cannot leave stock held.
func (s *Service) release(ctx context.Context, items []LineItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			zctx.From(ctx).Error("Failed to release reserved stock",
				zap.String("product_id", it.ProductID),
				zap.Int("qty", it.Quantity),
				zap.Error(err),
			)
		}
	}
}

// MarkShipped moves the order to shipped. Shipping an already shipped order
// is a no-op.
func (s *Service) MarkShipped(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.MarkShipped(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "mark order %s shipped", id)
	}
	return o, nil
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Track looks an order up by its tracking code, case-insensitively.
func (s *Service) Track(ctx context.Context, tracking string) (*Order, error) {
	tracking = strings.ToUpper(strings.TrimSpace(tracking))
	if tracking == "" {
		return nil, ErrNotFound
	}
	o, err := s.orders.GetByTracking(ctx, tracking)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order by tracking")
	}
	return o, nil
}

func normalizeCustomer(c Customer) Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

func rejectReason(err error) string {
	var ve *ValidationError
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &pe):
		return "persistence"
	default:
		return "unknown"
	}
}
