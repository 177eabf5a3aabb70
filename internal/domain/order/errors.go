package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("cart empty")
	// ErrOutOfStock is returned when any conditional stock decrement fails.
	// No stock is held and no order is persisted when it is returned.
	ErrOutOfStock = errors.New("one or more items are out of stock")
	// ErrNotFound is returned when an order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateTracking is returned by Repository.Create when the tracking
	// code is already taken.
	ErrDuplicateTracking = errors.New("tracking code already in use")
)

// ValidationError indicates malformed checkout input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// PersistenceError indicates that the store failed while placing an order.
// Any stock reserved for the attempt has been released.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to place order: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
