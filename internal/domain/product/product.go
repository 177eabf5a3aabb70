package product

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned by Inventory.DecrementStock when the
	// current stock is lower than the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned by Inventory for a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Product represents a catalog item available for purchase. Price is in
// minor currency units.
type Product struct {
	ID              string
	Title           string
	Price           int64
	Stock           int
	Description     string
	LongDescription string
	Image           string
	// SpecialCoupon grants a fixed reward when present in the cart.
	SpecialCoupon string
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Repository defines the catalog operations.
type Repository interface {
	Catalog
	Inventory

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Catalog defines read operations for the product catalog.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// Inventory is the stock reservation primitive. DecrementStock must be a
// single atomic check-and-set: decrement by qty only if stock >= qty,
// returning ErrInsufficientStock otherwise. Both methods reject qty <= 0
// with ErrInvalidQuantity.
type Inventory interface {
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

// Validate checks the admin-editable fields.
func (p *Product) Validate() error {
	switch {
	case p.Title == "":
		return errors.New("title is required")
	case p.Price < 0:
		return errors.New("price must not be negative")
	case p.Stock < 0:
		return errors.New("stock must not be negative")
	}
	return nil
}
