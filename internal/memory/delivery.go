package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tmercier/boutique/internal/domain/shipping"
)

// DeliveryTracker keeps one shipment record per shipped order.
type DeliveryTracker struct {
	mu      sync.RWMutex
	byOrder map[string]*shipping.Delivery
	index   []string // shipment order, by order id
}

var _ shipping.Tracker = (*DeliveryTracker)(nil)

// NewDeliveryTracker creates an empty tracker.
func NewDeliveryTracker() *DeliveryTracker {
	return &DeliveryTracker{byOrder: make(map[string]*shipping.Delivery)}
}

// Create registers a shipment with a fresh tracking number. The EXPEDIEE
// transition calls this exactly once per order.
func (s *DeliveryTracker) Create(_ context.Context, orderID, address string) (*shipping.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.byOrder[orderID]; ok {
		cp := *d
		return &cp, nil
	}
	d := &shipping.Delivery{
		ID:             uuid.New().String(),
		OrderID:        orderID,
		Carrier:        shipping.DefaultCarrier,
		TrackingNumber: shipping.NewTrackingNumber(),
		Address:        address,
		Status:         shipping.StatusInTransit,
	}
	s.byOrder[orderID] = d
	s.index = append(s.index, orderID)
	cp := *d
	return &cp, nil
}

// MarkDelivered flips the shipment status.
func (s *DeliveryTracker) MarkDelivered(_ context.Context, orderID string) (*shipping.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byOrder[orderID]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	d.Status = shipping.StatusDelivered
	cp := *d
	return &cp, nil
}

// ByOrder returns the shipment for an order, if any.
func (s *DeliveryTracker) ByOrder(_ context.Context, orderID string) (*shipping.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byOrder[orderID]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *DeliveryTracker) dumpLocked() []shipping.Delivery {
	out := make([]shipping.Delivery, 0, len(s.index))
	for _, orderID := range s.index {
		out = append(out, *s.byOrder[orderID])
	}
	return out
}
