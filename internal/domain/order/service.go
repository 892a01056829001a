package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmercier/boutique/internal/domain/billing"
	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/inventory"
	"github.com/tmercier/boutique/internal/domain/payment"
	"github.com/tmercier/boutique/internal/domain/shipping"
	"github.com/tmercier/boutique/internal/domain/user"
)

// Service coordinates the cart, inventory, order store, payment gateway,
// billing ledger and delivery tracker. It is the only component callers use
// to move an order through its lifecycle.
type Service struct {
	products   catalog.Store
	stock      inventory.Ledger
	carts      *cart.Service
	orders     Store
	payments   payment.Store
	gateway    payment.Gateway
	invoices   billing.Ledger
	deliveries shipping.Tracker
	users      user.Store
	lg         *zap.Logger
}

// NewService wires the orchestrator. All collaborators are required.
func NewService(
	products catalog.Store,
	stock inventory.Ledger,
	carts *cart.Service,
	orders Store,
	payments payment.Store,
	gateway payment.Gateway,
	invoices billing.Ledger,
	deliveries shipping.Tracker,
	users user.Store,
	lg *zap.Logger,
) *Service {
	return &Service{
		products:   products,
		stock:      stock,
		carts:      carts,
		orders:     orders,
		payments:   payments,
		gateway:    gateway,
		invoices:   invoices,
		deliveries: deliveries,
		users:      users,
		lg:         lg,
	}
}

// Checkout converts the shopper's cart into an order: it freezes a snapshot
// of names and unit prices, reserves all lines atomically, stores the order
// in CREE and clears the cart. On any failure cart and stock are untouched.
func (s *Service) Checkout(ctx context.Context, shopperID string) (*Order, error) {
	items, err := s.carts.View(ctx, shopperID)
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]Line, 0, len(items))
	reserve := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, catalog.ErrUnavailable
			}
			return nil, errors.Wrap(err, "resolve product")
		}
		if !p.Active {
			return nil, catalog.ErrUnavailable
		}
		lines = append(lines, Line{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Qty:            it.Qty,
		})
		reserve = append(reserve, inventory.Line{ProductID: p.ID, Qty: it.Qty})
	}

	if err := s.stock.Reserve(ctx, reserve); err != nil {
		return nil, err
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    shopperID,
		Lines:     lines,
		Status:    StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		// Creation cannot fail for a fresh uuid; put the stock back if it
		// somehow does so the failure is not a leak.
		_ = s.stock.Release(ctx, reserve)
		return nil, errors.Wrap(err, "store order")
	}

	if err := s.carts.Clear(ctx, shopperID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	s.lg.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", shopperID),
		zap.Int64("total_cents", o.TotalCents()),
		zap.Int("lines", len(o.Lines)))
	return o, nil
}

// Validate is the back-office approval moving CREE to VALIDEE.
func (s *Service) Validate(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	if !actor.Admin {
		return nil, ErrPermissionDenied
	}
	o, err := s.transition(ctx, orderID, StatusValidated, func(o *Order, now time.Time) error {
		o.ValidatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.lg.Info("order validated", zap.String("order_id", orderID), zap.String("admin_id", actor.UserID))
	return o, nil
}

// Pay charges the order total through the gateway. On success the order
// moves to PAYEE and an invoice is issued; on decline the order is unchanged
// and the attempt is recorded flagged not-succeeded. Only the owner may pay.
func (s *Service) Pay(ctx context.Context, actor Actor, orderID string, card payment.Card) (*payment.Record, error) {
	existing, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actor.UserID {
		return nil, ErrPermissionDenied
	}

	var rec *payment.Record
	_, err = s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(StatusPaid) {
			return &InvalidTransitionError{From: o.Status, Attempted: StatusPaid}
		}

		amount := o.TotalCents()
		if chargeErr := s.gateway.Charge(ctx, card, amount); chargeErr != nil {
			if errors.Is(chargeErr, payment.ErrDeclined) {
				declined := &payment.Record{
					ID:          uuid.New().String(),
					OrderID:     o.ID,
					AmountCents: amount,
					Succeeded:   false,
					CreatedAt:   time.Now().UTC(),
				}
				_ = s.payments.Append(ctx, declined)
				s.lg.Info("payment declined", zap.String("order_id", o.ID))
			}
			return chargeErr
		}

		now := time.Now().UTC()
		rec = &payment.Record{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			AmountCents: amount,
			Succeeded:   true,
			CreatedAt:   now,
		}
		if err := s.payments.Append(ctx, rec); err != nil {
			return errors.Wrap(err, "record payment")
		}

		inv, err := s.invoices.Issue(ctx, o.ID, amount)
		if err != nil {
			return errors.Wrap(err, "issue invoice")
		}

		o.Status = StatusPaid
		o.PaidAt = &now
		o.PaymentID = rec.ID
		o.InvoiceID = inv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order paid",
		zap.String("order_id", orderID),
		zap.String("payment_id", rec.ID),
		zap.Int64("amount_cents", rec.AmountCents))
	return rec, nil
}

// Ship moves PAYEE to EXPEDIEE and creates the delivery record with a fresh
// tracking number, addressed to the owner's profile address.
func (s *Service) Ship(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	if !actor.Admin {
		return nil, ErrPermissionDenied
	}

	o, err := s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(StatusShipped) {
			return &InvalidTransitionError{From: o.Status, Attempted: StatusShipped}
		}

		address := ""
		if owner, err := s.users.Get(ctx, o.UserID); err == nil {
			address = owner.Address
		}
		d, err := s.deliveries.Create(ctx, o.ID, address)
		if err != nil {
			return errors.Wrap(err, "create delivery")
		}

		now := time.Now().UTC()
		o.Status = StatusShipped
		o.ShippedAt = &now
		o.Delivery = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order shipped",
		zap.String("order_id", orderID),
		zap.String("tracking_number", o.Delivery.TrackingNumber))
	return o, nil
}

// Deliver moves EXPEDIEE to LIVREE and closes the delivery record.
func (s *Service) Deliver(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	if !actor.Admin {
		return nil, ErrPermissionDenied
	}

	o, err := s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(StatusDelivered) {
			return &InvalidTransitionError{From: o.Status, Attempted: StatusDelivered}
		}

		d, err := s.deliveries.MarkDelivered(ctx, o.ID)
		if err != nil {
			return errors.Wrap(err, "mark delivered")
		}

		now := time.Now().UTC()
		o.Status = StatusDelivered
		o.DeliveredAt = &now
		o.Delivery = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order delivered", zap.String("order_id", orderID))
	return o, nil
}

// Cancel lets the owner abandon an unpaid order (CREE or VALIDEE). The
// reserved stock goes back to the shelf.
func (s *Service) Cancel(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	existing, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actor.UserID {
		return nil, ErrPermissionDenied
	}

	o, err := s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(StatusCancelled) {
			return &InvalidTransitionError{From: o.Status, Attempted: StatusCancelled}
		}
		if err := s.stock.Release(ctx, o.ReservedLines()); err != nil {
			return errors.Wrap(err, "release stock")
		}
		now := time.Now().UTC()
		o.Status = StatusCancelled
		o.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order cancelled", zap.String("order_id", orderID))
	return o, nil
}

// Refund moves a paid order (PAYEE, EXPEDIEE or LIVREE) to REMBOURSEE.
// amountCents <= 0 means a full refund. A partial refund still restores the
// full reserved quantities; the goods come back whole even when the money
// does not.
func (s *Service) Refund(ctx context.Context, actor Actor, orderID string, amountCents int64) (*Order, error) {
	if !actor.Admin {
		return nil, ErrPermissionDenied
	}

	o, err := s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(StatusRefunded) {
			return &InvalidTransitionError{From: o.Status, Attempted: StatusRefunded}
		}

		total := o.TotalCents()
		refund := amountCents
		if refund <= 0 {
			refund = total
		}
		if refund > total {
			return ErrRefundExceedsTotal
		}

		if err := s.stock.Release(ctx, o.ReservedLines()); err != nil {
			return errors.Wrap(err, "release stock")
		}

		now := time.Now().UTC()
		o.Status = StatusRefunded
		o.RefundedAt = &now
		o.RefundedCents = refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("order refunded",
		zap.String("order_id", orderID),
		zap.Int64("refunded_cents", o.RefundedCents))
	return o, nil
}

// GetForActor returns a single order: owners see their own, admins see any.
func (s *Service) GetForActor(ctx context.Context, actor Actor, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.Admin {
		return nil, ErrPermissionDenied
	}
	return o, nil
}

// ListForUser returns all orders owned by the given shopper.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order; admin only.
func (s *Service) ListAll(ctx context.Context, actor Actor) ([]*Order, error) {
	if !actor.Admin {
		return nil, ErrPermissionDenied
	}
	return s.orders.List(ctx)
}

// transition applies a simple timestamp-only transition under the order lock.
func (s *Service) transition(ctx context.Context, orderID string, next Status, stamp func(o *Order, now time.Time) error) (*Order, error) {
	return s.orders.Mutate(ctx, orderID, func(o *Order) error {
		if !o.Status.CanTransition(next) {
			return &InvalidTransitionError{From: o.Status, Attempted: next}
		}
		now := time.Now().UTC()
		if err := stamp(o, now); err != nil {
			return err
		}
		o.Status = next
		return nil
	})
}
