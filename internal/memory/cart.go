package memory

import (
	"context"
	"sync"

	"github.com/tmercier/boutique/internal/domain/cart"
)

// CartStore keeps one cart per shopper, created lazily on first add. The
// single lock also guards against lost updates from duplicate concurrent
// requests (double-click add-to-cart).
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]cart.Item
}

var _ cart.Store = (*CartStore)(nil)

// NewCartStore creates an empty cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]cart.Item)}
}

// Add merges qty units into the shopper's line for the product, keeping the
// line order stable.
func (s *CartStore) Add(_ context.Context, shopperID, productID string, qty int) error {
	if qty < 1 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[shopperID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Qty += qty
			return nil
		}
	}
	s.carts[shopperID] = append(items, cart.Item{ProductID: productID, Qty: qty})
	return nil
}

// Remove decrements a line, clamped at zero. qty == 0 removes the line
// entirely; so does removing more than present. Unknown lines are a no-op.
func (s *CartStore) Remove(_ context.Context, shopperID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[shopperID]
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		if qty > 0 && items[i].Qty > qty {
			items[i].Qty -= qty
			return nil
		}
		s.carts[shopperID] = append(items[:i], items[i+1:]...)
		return nil
	}
	return nil
}

// View returns a copy of the shopper's cart lines in insertion order.
func (s *CartStore) View(_ context.Context, shopperID string) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[shopperID]
	out := make([]cart.Item, len(items))
	copy(out, items)
	return out, nil
}

// Clear empties the shopper's cart.
func (s *CartStore) Clear(_ context.Context, shopperID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, shopperID)
	return nil
}

func (s *CartStore) dumpLocked() map[string][]cart.Item {
	out := make(map[string][]cart.Item, len(s.carts))
	for shopper, items := range s.carts {
		cp := make([]cart.Item, len(items))
		copy(cp, items)
		out[shopper] = cp
	}
	return out
}
