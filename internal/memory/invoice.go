package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tmercier/boutique/internal/domain/billing"
)

// InvoiceLedger issues and retains invoices, at most one per order.
type InvoiceLedger struct {
	mu      sync.RWMutex
	byOrder map[string]*billing.Invoice
	index   []string // issue order, by order id
}

var _ billing.Ledger = (*InvoiceLedger)(nil)

// NewInvoiceLedger creates an empty ledger.
func NewInvoiceLedger() *InvoiceLedger {
	return &InvoiceLedger{byOrder: make(map[string]*billing.Invoice)}
}

// Issue creates the invoice for an order. A second call for the same order
// fails: the PAYEE transition happens once.
func (s *InvoiceLedger) Issue(_ context.Context, orderID string, amountCents int64) (*billing.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOrder[orderID]; ok {
		return nil, billing.ErrAlreadyIssued
	}
	inv := &billing.Invoice{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		AmountCents: amountCents,
		IssuedAt:    time.Now().UTC(),
	}
	s.byOrder[orderID] = inv
	s.index = append(s.index, orderID)
	cp := *inv
	return &cp, nil
}

// ByOrder returns the invoice for an order, if issued.
func (s *InvoiceLedger) ByOrder(_ context.Context, orderID string) (*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.byOrder[orderID]
	if !ok {
		return nil, billing.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

// List returns every invoice in issue order.
func (s *InvoiceLedger) List(_ context.Context) ([]billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dumpLocked(), nil
}

func (s *InvoiceLedger) dumpLocked() []billing.Invoice {
	out := make([]billing.Invoice, 0, len(s.index))
	for _, orderID := range s.index {
		out = append(out, *s.byOrder[orderID])
	}
	return out
}
