// Package memory implements every store of the engine in process memory.
//
// Each store guards its state with its own mutex. Where two stores are held
// at once the acquisition order is fixed (orders before products, carts,
// payments, invoices, deliveries, users) and Stores.Dump takes all locks in
// that same order, so a dump is one consistent cut across the whole ledger.
package memory

import (
	"time"

	"github.com/tmercier/boutique/internal/domain/billing"
	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/payment"
	"github.com/tmercier/boutique/internal/domain/shipping"
	"github.com/tmercier/boutique/internal/domain/user"
)

// Stores bundles all in-memory stores of the engine.
type Stores struct {
	Orders     *OrderStore
	Products   *ProductStore
	Carts      *CartStore
	Payments   *PaymentStore
	Invoices   *InvoiceLedger
	Deliveries *DeliveryTracker
	Users      *UserStore
}

// NewStores creates the complete empty ledger.
func NewStores() *Stores {
	return &Stores{
		Orders:     NewOrderStore(),
		Products:   NewProductStore(),
		Carts:      NewCartStore(),
		Payments:   NewPaymentStore(),
		Invoices:   NewInvoiceLedger(),
		Deliveries: NewDeliveryTracker(),
		Users:      NewUserStore(),
	}
}

// Dump is a point-in-time copy of the whole ledger.
type Dump struct {
	TakenAt    time.Time
	Products   []catalog.Product
	Carts      map[string][]cart.Item
	Orders     []order.Order
	Payments   []payment.Record
	Invoices   []billing.Invoice
	Deliveries []shipping.Delivery
	Users      []user.User
}

// Dump captures all stores under their locks at once, in the global lock
// order, so the copy is transactionally consistent: no reserve, transition or
// payment can interleave between two stores of the same dump.
func (s *Stores) Dump() *Dump {
	s.Orders.mu.Lock()
	defer s.Orders.mu.Unlock()
	s.Products.mu.Lock()
	defer s.Products.mu.Unlock()
	s.Carts.mu.Lock()
	defer s.Carts.mu.Unlock()
	s.Payments.mu.Lock()
	defer s.Payments.mu.Unlock()
	s.Invoices.mu.Lock()
	defer s.Invoices.mu.Unlock()
	s.Deliveries.mu.Lock()
	defer s.Deliveries.mu.Unlock()
	s.Users.mu.Lock()
	defer s.Users.mu.Unlock()

	return &Dump{
		TakenAt:    time.Now().UTC(),
		Products:   s.Products.dumpLocked(),
		Carts:      s.Carts.dumpLocked(),
		Orders:     s.Orders.dumpLocked(),
		Payments:   s.Payments.dumpLocked(),
		Invoices:   s.Invoices.dumpLocked(),
		Deliveries: s.Deliveries.dumpLocked(),
		Users:      s.Users.dumpLocked(),
	}
}
