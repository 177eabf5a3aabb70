package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xenking/brosmart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an append-only order log.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
}

// NewOrderRepository returns an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].Tracking == o.Tracking {
			return order.ErrDuplicateTracking
		}
	}
	cp := *o
	cp.Items = slices.Clone(o.Items)
	r.orders = append(r.orders, cp)
	return nil
}

// List returns orders newest first. Orders created at the same instant keep
// reverse insertion order.
func (r *OrderRepository) List(_ context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		out = append(out, r.orders[i])
	}
	slices.SortStableFunc(out, func(a, b order.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(func(o *order.Order) bool { return o.ID == id })
	if i < 0 {
		return nil, order.ErrNotFound
	}
	o := r.orders[i]
	return &o, nil
}

func (r *OrderRepository) GetByTracking(_ context.Context, tracking string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(func(o *order.Order) bool { return strings.EqualFold(o.Tracking, tracking) })
	if i < 0 {
		return nil, order.ErrNotFound
	}
	o := r.orders[i]
	return &o, nil
}

// MarkShipped sets the status under the write lock.
func (r *OrderRepository) MarkShipped(_ context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(func(o *order.Order) bool { return o.ID == id })
	if i < 0 {
		return nil, order.ErrNotFound
	}
	r.orders[i].Status = order.StatusShipped
	o := r.orders[i]
	return &o, nil
}

func (r *OrderRepository) Summary(_ context.Context) (order.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := order.Summary{Orders: len(r.orders)}
	for _, o := range r.orders {
		if o.Status == order.StatusPending {
			s.Pending++
		}
		s.Revenue += o.Total
	}
	return s, nil
}

func (r *OrderRepository) index(match func(*order.Order) bool) int {
	for i := range r.orders {
		if match(&r.orders[i]) {
			return i
		}
	}
	return -1
}
