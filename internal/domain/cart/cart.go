// Package cart implements the per-shopper shopping cart.
//
// Carts hold no money logic and no stock checks: carts are long-lived and
// stock is volatile, so availability is only verified at checkout.
package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tmercier/boutique/internal/domain/catalog"
)

// ErrInvalidQuantity is returned when an add specifies a quantity below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Item is a cart line: a product reference and a quantity of at least one.
type Item struct {
	ProductID string
	Qty       int
}

// Store defines raw cart persistence keyed by shopper id. Items keep their
// insertion order. Removing a line to zero deletes it.
type Store interface {
	Add(ctx context.Context, shopperID, productID string, qty int) error
	Remove(ctx context.Context, shopperID, productID string, qty int) error
	View(ctx context.Context, shopperID string) ([]Item, error)
	Clear(ctx context.Context, shopperID string) error
}

// Service wraps a Store with the product-existence rule: only known, active
// products may enter a cart.
type Service struct {
	carts    Store
	products catalog.Store
}

// NewService creates a cart Service over the given stores.
func NewService(carts Store, products catalog.Store) *Service {
	return &Service{carts: carts, products: products}
}

// AddItem adds qty units of a product to the shopper's cart, creating the
// line if absent. It fails with catalog.ErrUnavailable when the product is
// unknown or inactive.
func (s *Service) AddItem(ctx context.Context, shopperID, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.ErrUnavailable
		}
		return errors.Wrap(err, "resolve product")
	}
	if !p.Active {
		return catalog.ErrUnavailable
	}

	return s.carts.Add(ctx, shopperID, productID, qty)
}

// RemoveItem removes qty units from a cart line. A qty of zero removes the
// line entirely; removing more than present deletes the line rather than
// erroring.
func (s *Service) RemoveItem(ctx context.Context, shopperID, productID string, qty int) error {
	return s.carts.Remove(ctx, shopperID, productID, qty)
}

// View returns the shopper's cart lines in insertion order.
func (s *Service) View(ctx context.Context, shopperID string) ([]Item, error) {
	return s.carts.View(ctx, shopperID)
}

// Clear empties the shopper's cart.
func (s *Service) Clear(ctx context.Context, shopperID string) error {
	return s.carts.Clear(ctx, shopperID)
}

// Total computes the cart total in cents against current catalog prices.
// Lines whose product vanished or went inactive are skipped, matching what
// the shopper would see on the cart page.
func (s *Service) Total(ctx context.Context, shopperID string) (int64, error) {
	items, err := s.carts.View(ctx, shopperID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, it := range items {
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil || !p.Active {
			continue
		}
		total += p.PriceCents * int64(it.Qty)
	}
	return total, nil
}
