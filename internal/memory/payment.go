package memory

import (
	"context"
	"sync"

	"github.com/tmercier/boutique/internal/domain/payment"
)

// PaymentStore is the append-only record of charge attempts, successful and
// declined alike, keyed by order id.
type PaymentStore struct {
	mu      sync.RWMutex
	byOrder map[string][]payment.Record
	all     []payment.Record
}

var _ payment.Store = (*PaymentStore)(nil)

// NewPaymentStore creates an empty payment record.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{byOrder: make(map[string][]payment.Record)}
}

// Append records a charge attempt.
func (s *PaymentStore) Append(_ context.Context, r *payment.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byOrder[r.OrderID] = append(s.byOrder[r.OrderID], *r)
	s.all = append(s.all, *r)
	return nil
}

// ByOrder returns all attempts for the order, oldest first.
func (s *PaymentStore) ByOrder(_ context.Context, orderID string) ([]payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.byOrder[orderID]
	out := make([]payment.Record, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *PaymentStore) dumpLocked() []payment.Record {
	out := make([]payment.Record, len(s.all))
	copy(out, s.all)
	return out
}
