// Package inventory defines the stock reservation contract.
//
// Reservation is the concurrency-critical heart of checkout: two shoppers
// racing for the last unit must never both succeed, and a multi-line
// reservation must be all-or-nothing: a failure on the third line of four
// leaves the first two untouched.
package inventory

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrProductUnavailable is returned when a reserved line references an
// unknown or inactive product.
var ErrProductUnavailable = errors.New("product unavailable")

// Line is a (product, quantity) pair in a reservation batch.
type Line struct {
	ProductID string
	Qty       int
}

// InsufficientStockError names the first product in a batch whose stock
// could not cover the requested quantity.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

// Ledger performs atomic stock movements.
//
// Reserve verifies every line against the current stock and decrements all of
// them together; on any failure no stock is mutated. Release increments all
// lines together and never fails for quantities the ledger previously
// reserved.
type Ledger interface {
	Reserve(ctx context.Context, lines []Line) error
	Release(ctx context.Context, lines []Line) error
}
