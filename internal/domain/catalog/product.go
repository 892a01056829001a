// Package catalog defines the product model and the read/write operations
// the rest of the engine uses to resolve catalog entries.
//
// The stock quantity lives on the Product but is owned exclusively by the
// inventory ledger: catalog writers may touch every other field, stock moves
// only through reserve/release (and the explicit admin SetStock).
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnavailable is returned when a product exists but is not active for sale.
var ErrUnavailable = errors.New("product unavailable")

// Product is a catalog item available for purchase. Prices are integer
// minor currency units (cents).
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	StockQty    int
	Active      bool
	ImageURL    string
}

// PriceMajor returns the unit price in major currency units for display.
func (p *Product) PriceMajor() decimal.Decimal {
	return decimal.NewFromInt(p.PriceCents).Div(decimal.NewFromInt(100))
}

// Update describes a partial update to a product. Nil fields are left
// untouched. Stock is deliberately absent: it belongs to the inventory ledger.
type Update struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Active      *bool
	ImageURL    *string
}

// Store defines catalog persistence. List never exposes the backing
// structure: implementations return copies.
type Store interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ListActive(ctx context.Context) ([]Product, error)
	Add(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, u Update) (*Product, error)
	// SetStock overwrites the stock count, used by administrative restocking.
	SetStock(ctx context.Context, id string, qty int) (*Product, error)
}
