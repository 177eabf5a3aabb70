package order

import (
	"context"
	"strings"
	"time"

	"github.com/xenking/brosmart/internal/domain/ident"
)

// Status is the fulfilment state of an order. The only transition is
// pending -> shipped.
type Status string

const (
	StatusPending Status = "pending"
	StatusShipped Status = "shipped"
)

// PaymentCashOnDelivery is the only supported payment method.
const PaymentCashOnDelivery = "Cash on Delivery"

// TrackingPrefix starts every tracking code.
const TrackingPrefix = "BROS"

// Order is a placed customer order. Items and pricing fields are immutable
// once created; only Status moves forward.
type Order struct {
	ID            string
	Tracking      string
	Items         []LineItem
	Subtotal      int64
	Discount      int64
	Total         int64
	Coupon        string
	PaymentMethod string
	Customer      Customer
	Status        Status
	CreatedAt     time.Time
}

// LineItem is a snapshot of one product at placement time. Later catalog
// edits do not affect it.
type LineItem struct {
	ProductID string
	Title     string
	Quantity  int
	Price     int64
}

// Customer holds the delivery contact for an order.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// ComposeAddress joins the address parts the way checkout collects them.
func ComposeAddress(street, city, postal, country string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{street, city, postal, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Validate checks the customer fields collected at checkout.
func (c *Customer) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
	}
	if !strings.Contains(c.Email, "@") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if !strings.HasPrefix(strings.TrimSpace(c.Phone), "+88") {
		return &ValidationError{Field: "phone", Reason: "must start with +88"}
	}
	return nil
}

// NewTracking returns a tracking code such as BROS-20251016-K3F9.
func NewTracking(now time.Time) string {
	return TrackingPrefix + "-" + now.Format("20060102") + "-" + ident.Code(4)
}

// Summary aggregates order counters for the admin dashboard.
type Summary struct {
	Orders  int
	Pending int
	Revenue int64
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByTracking(ctx context.Context, tracking string) (*Order, error)
	// MarkShipped moves a pending order to shipped and returns the stored
	// record. Already shipped orders are returned unchanged.
	MarkShipped(ctx context.Context, id string) (*Order, error)
	Summary(ctx context.Context) (Summary, error)
}
