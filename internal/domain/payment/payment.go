// Package payment simulates a card payment processor.
//
// A decline is a normal business outcome, not a system fault: the order stays
// where it was and the shopper may retry with another card.
package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrDeclined is returned when the processor refuses the charge.
	ErrDeclined = errors.New("payment declined")
	// ErrNotFound is returned when a requested payment record does not exist.
	ErrNotFound = errors.New("payment not found")
)

// InvalidCardError reports card data that is malformed before any charge is
// attempted: wrong number length, out-of-range expiry, bad CVC shape.
type InvalidCardError struct {
	Reason string
}

func (e *InvalidCardError) Error() string {
	return "invalid card: " + e.Reason
}

// Card carries the data for a single charge attempt. It is never persisted;
// only the resulting Record is.
type Card struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
}

// Record is the immutable outcome of a charge attempt. Declined attempts are
// recorded too, flagged not-succeeded, and are never attached to the order.
type Record struct {
	ID          string
	OrderID     string
	AmountCents int64
	Succeeded   bool
	CreatedAt   time.Time
}

// AmountMajor returns the charged amount in major currency units.
func (r *Record) AmountMajor() decimal.Decimal {
	return decimal.NewFromInt(r.AmountCents).Div(decimal.NewFromInt(100))
}

// Gateway authorizes card charges. Charge returns nil on success,
// ErrDeclined on refusal, or *InvalidCardError for malformed input.
type Gateway interface {
	Charge(ctx context.Context, card Card, amountCents int64) error
}

// Store is the append-only payment attempt record keyed by order id.
type Store interface {
	Append(ctx context.Context, r *Record) error
	ByOrder(ctx context.Context, orderID string) ([]Record, error)
}
