// Package order owns the order collection, its state machine, and the
// service that orchestrates checkout, payment, shipment, cancellation and
// refund across the other components.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/tmercier/boutique/internal/domain/inventory"
	"github.com/tmercier/boutique/internal/domain/shipping"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned by checkout when the shopper's cart is empty.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPermissionDenied is returned when the caller lacks the admin or
	// ownership role an operation requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRefundExceedsTotal is returned when a refund amount is larger than
	// the order's frozen total.
	ErrRefundExceedsTotal = errors.New("refund amount exceeds order total")
)

// Line is an immutable snapshot of a product at checkout time. Later catalog
// edits never reach it, which is what keeps historical orders reconcilable.
type Line struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
	Qty            int
}

// Order is a priced, stock-reserved purchase moving through the lifecycle
// state machine. Orders are never deleted: terminal states are retained for
// history.
type Order struct {
	ID     string
	UserID string
	Lines  []Line
	Status Status

	CreatedAt   time.Time
	ValidatedAt *time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time

	Delivery      *shipping.Delivery
	InvoiceID     string
	PaymentID     string
	RefundedCents int64
}

// TotalCents is always the sum over the frozen snapshot, never recomputed
// from live catalog prices.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.UnitPriceCents * int64(l.Qty)
	}
	return total
}

// TotalMajor returns the order total in major currency units for display.
func (o *Order) TotalMajor() decimal.Decimal {
	return decimal.NewFromInt(o.TotalCents()).Div(decimal.NewFromInt(100))
}

// ReservedLines converts the snapshot back into inventory lines, used to
// release stock on cancellation and refund.
func (o *Order) ReservedLines() []inventory.Line {
	lines := make([]inventory.Line, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = inventory.Line{ProductID: l.ProductID, Qty: l.Qty}
	}
	return lines
}

// Actor identifies the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID string
	Admin  bool
}

// Store defines order persistence. Mutate serializes all lifecycle
// transitions on the same order: the callback runs with the order exclusively
// held, and its changes are discarded when it returns an error.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	List(ctx context.Context) ([]*Order, error)
	Mutate(ctx context.Context, id string, fn func(o *Order) error) (*Order, error)
}
