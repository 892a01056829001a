package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/tmercier/boutique/internal/domain/order"
)

// OrderStore holds every order ever created; terminal orders are retained
// for history. Mutate serializes lifecycle transitions across all orders,
// which is stricter than required and trivially correct at this scale.
type OrderStore struct {
	mu    sync.RWMutex
	byID  map[string]*order.Order
	index []string // creation order
}

var _ order.Store = (*OrderStore)(nil)

// NewOrderStore creates an empty order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{byID: make(map[string]*order.Order)}
}

// Create stores a new order.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[o.ID]; ok {
		return errors.Errorf("order %s already exists", o.ID)
	}
	s.byID[o.ID] = cloneOrder(o)
	s.index = append(s.index, o.ID)
	return nil
}

// Get returns a copy of the order.
func (s *OrderStore) Get(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

// ListByUser returns the shopper's orders in creation order.
func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*order.Order
	for _, id := range s.index {
		if o := s.byID[id]; o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

// List returns every order in creation order.
func (s *OrderStore) List(_ context.Context) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*order.Order, 0, len(s.index))
	for _, id := range s.index {
		out = append(out, cloneOrder(s.byID[id]))
	}
	return out, nil
}

// Mutate runs fn on a working copy of the order under the store lock and
// commits the copy only when fn returns nil, so a rejected transition (a
// cancel racing a ship, say) leaves the stored order untouched.
func (s *OrderStore) Mutate(_ context.Context, id string, fn func(o *order.Order) error) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	work := cloneOrder(stored)
	if err := fn(work); err != nil {
		return nil, err
	}
	s.byID[id] = work
	return cloneOrder(work), nil
}

func (s *OrderStore) dumpLocked() []order.Order {
	out := make([]order.Order, 0, len(s.index))
	for _, id := range s.index {
		out = append(out, *cloneOrder(s.byID[id]))
	}
	return out
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Lines = make([]order.Line, len(o.Lines))
	copy(cp.Lines, o.Lines)
	cp.ValidatedAt = cloneTime(o.ValidatedAt)
	cp.PaidAt = cloneTime(o.PaidAt)
	cp.ShippedAt = cloneTime(o.ShippedAt)
	cp.DeliveredAt = cloneTime(o.DeliveredAt)
	cp.CancelledAt = cloneTime(o.CancelledAt)
	cp.RefundedAt = cloneTime(o.RefundedAt)
	if o.Delivery != nil {
		d := *o.Delivery
		cp.Delivery = &d
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
