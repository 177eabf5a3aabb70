// Package memory provides in-process implementations of the domain stores.
// They back the server in "memory" storage mode and the pipeline tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xenking/brosmart/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository keeps the catalog in a map. Stock changes happen under
// the write lock so every decrement is a single check-and-set.
type ProductRepository struct {
	mu   sync.RWMutex
	byID map[string]product.Product
}

// NewProductRepository returns a repository seeded with products.
func NewProductRepository(products ...product.Product) *ProductRepository {
	r := &ProductRepository{byID: make(map[string]product.Product, len(products))}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

// List returns all products ordered by id.
func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b product.Product) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products that exist, in the order of ids.
func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// DecrementStock subtracts qty if at least qty units are available.
func (r *ProductRepository) DecrementStock(_ context.Context, id string, qty int) error {
	if qty <= 0 {
		return product.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	r.byID[id] = p
	return nil
}

func (r *ProductRepository) IncrementStock(_ context.Context, id string, qty int) error {
	if qty <= 0 {
		return product.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock += qty
	r.byID[id] = p
	return nil
}
