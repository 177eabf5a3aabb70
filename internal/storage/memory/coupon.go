package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xenking/brosmart/internal/domain/coupon"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository indexes coupons by normalized code.
type CouponRepository struct {
	mu     sync.RWMutex
	byCode map[string]coupon.Coupon
}

// NewCouponRepository returns a repository seeded with coupons. Later
// duplicates of a normalized code are ignored.
func NewCouponRepository(coupons ...coupon.Coupon) *CouponRepository {
	r := &CouponRepository{byCode: make(map[string]coupon.Coupon, len(coupons))}
	for _, c := range coupons {
		key := coupon.NormalizeCode(c.Code)
		if _, ok := r.byCode[key]; !ok {
			r.byCode[key] = c
		}
	}
	return r
}

func (r *CouponRepository) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byCode[coupon.NormalizeCode(code)]
	if !ok {
		return nil, coupon.ErrInvalidCoupon
	}
	return &c, nil
}

// List returns coupons ordered by code.
func (r *CouponRepository) List(_ context.Context) ([]coupon.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coupon.Coupon, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b coupon.Coupon) int {
		return strings.Compare(coupon.NormalizeCode(a.Code), coupon.NormalizeCode(b.Code))
	})
	return out, nil
}

func (r *CouponRepository) Create(_ context.Context, c *coupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := coupon.NormalizeCode(c.Code)
	if _, ok := r.byCode[key]; ok {
		return coupon.ErrDuplicateCode
	}
	r.byCode[key] = *c
	return nil
}

func (r *CouponRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, c := range r.byCode {
		if c.ID == id {
			delete(r.byCode, key)
			return nil
		}
	}
	return coupon.ErrNotFound
}
