// Package billing issues invoices. An invoice is created exactly once, at
// the moment an order first reaches PAYEE, and is immutable afterwards.
package billing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no invoice exists for the given order.
	ErrNotFound = errors.New("invoice not found")
	// ErrAlreadyIssued is returned on a second Issue for the same order.
	// The state machine prevents this; hitting it indicates a bug upstream.
	ErrAlreadyIssued = errors.New("invoice already issued for order")
)

// Invoice is the billing record for a paid order.
type Invoice struct {
	ID          string
	OrderID     string
	AmountCents int64
	IssuedAt    time.Time
}

// AmountMajor returns the invoiced amount in major currency units.
func (i *Invoice) AmountMajor() decimal.Decimal {
	return decimal.NewFromInt(i.AmountCents).Div(decimal.NewFromInt(100))
}

// Ledger is the append-only invoice record keyed by order id.
type Ledger interface {
	Issue(ctx context.Context, orderID string, amountCents int64) (*Invoice, error)
	ByOrder(ctx context.Context, orderID string) (*Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
}
