package coupon

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/brosmart/internal/domain/pricing"
)

// SpecialRewardAmount is the fixed discount, in minor units, granted by a
// product's special coupon code.
const SpecialRewardAmount int64 = 150

var (
	// ErrInvalidCoupon is returned when a code matches neither a catalog
	// coupon nor a special code of a product in the cart.
	ErrInvalidCoupon = errors.New("invalid coupon")
	// ErrNotFound is returned when a coupon id does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrDuplicateCode is returned when creating a coupon whose normalized
	// code is already taken.
	ErrDuplicateCode = errors.New("coupon code already exists")
)

// Coupon is a catalog coupon managed by the admin. Coupons are never
// mutated in place: they are created and deleted.
type Coupon struct {
	ID          string
	Code        string
	Type        pricing.Kind
	Value       int64
	Description string
}

// NormalizeCode trims whitespace and upper-cases code. Coupon codes are
// compared in this form everywhere.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the coupon definition. Percent values must be within
// 0..100, fixed values must not be negative.
func (c *Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return errors.New("code is required")
	}
	switch c.Type {
	case pricing.KindPercent:
		if c.Value < 0 || c.Value > 100 {
			return errors.Errorf("percent value %d out of range 0..100", c.Value)
		}
	case pricing.KindFixed:
		if c.Value < 0 {
			return errors.Errorf("fixed value %d must not be negative", c.Value)
		}
	default:
		return errors.Errorf("unsupported discount type %q", c.Type)
	}
	return nil
}

// Descriptor describes an applied discount. It is either a CatalogCoupon or
// a SpecialReward and is never persisted; orders record only Code().
type Descriptor interface {
	pricing.Rule
	Code() string
	Description() string
}

var (
	_ Descriptor = CatalogCoupon{}
	_ Descriptor = SpecialReward{}
)

// CatalogCoupon is a Descriptor backed by a stored coupon.
type CatalogCoupon struct {
	Coupon Coupon
}

func (c CatalogCoupon) Kind() pricing.Kind  { return c.Coupon.Type }
func (c CatalogCoupon) Value() int64        { return c.Coupon.Value }
func (c CatalogCoupon) Code() string        { return NormalizeCode(c.Coupon.Code) }
func (c CatalogCoupon) Description() string { return c.Coupon.Description }

// SpecialReward is synthesized when the cart holds a product whose special
// coupon code was entered.
type SpecialReward struct {
	code      string
	ProductID string
	Amount    int64
}

// NewSpecialReward returns the reward for code granted by productID.
func NewSpecialReward(code, productID string) SpecialReward {
	return SpecialReward{
		code:      NormalizeCode(code),
		ProductID: productID,
		Amount:    SpecialRewardAmount,
	}
}

func (r SpecialReward) Kind() pricing.Kind { return pricing.KindFixed }
func (r SpecialReward) Value() int64       { return r.Amount }
func (r SpecialReward) Code() string       { return r.code }

func (r SpecialReward) Description() string {
	return fmt.Sprintf("Special %s reward!", pricing.Format(r.Amount))
}

// Repository provides coupon persistence.
type Repository interface {
	// FindByCode looks a coupon up by normalized code. It returns
	// ErrInvalidCoupon when no coupon matches.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	// Create stores c, returning ErrDuplicateCode on a normalized code clash.
	Create(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
}
