package memory

import (
	"context"
	"sync"

	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/inventory"
)

// ProductStore holds the catalog and doubles as the inventory ledger: the
// stock field of a product only moves under this store's lock, so a
// multi-line reservation is atomic with respect to every other reserve,
// release and restock.
type ProductStore struct {
	mu    sync.RWMutex
	byID  map[string]*catalog.Product
	index []string // insertion order
}

var (
	_ catalog.Store    = (*ProductStore)(nil)
	_ inventory.Ledger = (*ProductStore)(nil)
)

// NewProductStore creates an empty catalog.
func NewProductStore() *ProductStore {
	return &ProductStore{byID: make(map[string]*catalog.Product)}
}

// Get returns a copy of the product with the given id.
func (s *ProductStore) Get(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// List returns every product, including inactive ones, in insertion order.
func (s *ProductStore) List(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(false), nil
}

// ListActive returns the products currently for sale, in insertion order.
func (s *ProductStore) ListActive(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(true), nil
}

func (s *ProductStore) listLocked(activeOnly bool) []catalog.Product {
	out := make([]catalog.Product, 0, len(s.index))
	for _, id := range s.index {
		p := s.byID[id]
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Add inserts a new product.
func (s *ProductStore) Add(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		s.index = append(s.index, p.ID)
	}
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

// Update applies a partial update to the non-stock fields of a product.
func (s *ProductStore) Update(_ context.Context, id string, u catalog.Update) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.PriceCents != nil {
		p.PriceCents = *u.PriceCents
	}
	if u.Active != nil {
		p.Active = *u.Active
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	cp := *p
	return &cp, nil
}

// SetStock overwrites the stock count; administrative restocking only.
func (s *ProductStore) SetStock(_ context.Context, id string, qty int) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	p.StockQty = qty
	cp := *p
	return &cp, nil
}

// Reserve checks every line against current stock and decrements all of them
// under one critical section. If any line references an unknown or inactive
// product, or asks for more than is on the shelf, nothing is decremented.
func (s *ProductStore) Reserve(_ context.Context, lines []inventory.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Aggregate per product first so a batch naming the same product twice
	// is checked against the combined quantity.
	need := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Qty <= 0 {
			return inventory.ErrProductUnavailable
		}
		need[l.ProductID] += l.Qty
	}

	for _, l := range lines {
		p, ok := s.byID[l.ProductID]
		if !ok || !p.Active {
			return inventory.ErrProductUnavailable
		}
		if p.StockQty < need[l.ProductID] {
			return &inventory.InsufficientStockError{ProductID: l.ProductID}
		}
	}

	for id, qty := range need {
		s.byID[id].StockQty -= qty
	}
	return nil
}

// Release puts previously reserved quantities back. Unknown products are
// skipped: products are never deleted, so this only covers a ledger loaded
// from a partial dump.
func (s *ProductStore) Release(_ context.Context, lines []inventory.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		if p, ok := s.byID[l.ProductID]; ok {
			p.StockQty += l.Qty
		}
	}
	return nil
}

func (s *ProductStore) dumpLocked() []catalog.Product {
	return s.listLocked(false)
}
