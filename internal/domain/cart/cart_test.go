package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/memory"
)

func newService(t *testing.T) (*cart.Service, *memory.ProductStore) {
	t.Helper()
	products := memory.NewProductStore()
	ctx := context.Background()
	for _, p := range []catalog.Product{
		{ID: "tee", Name: "T-Shirt", PriceCents: 1999, StockQty: 10, Active: true},
		{ID: "off", Name: "Retiré", PriceCents: 4999, StockQty: 5, Active: false},
	} {
		require.NoError(t, products.Add(ctx, &p))
	}
	return cart.NewService(memory.NewCartStore(), products), products
}

func TestAddItemChecksProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, "alice", "tee", 2))

	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "ghost", 1), catalog.ErrUnavailable)
	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "off", 1), catalog.ErrUnavailable)
	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "tee", 0), cart.ErrInvalidQuantity)
}

func TestAddItemIgnoresStockLevel(t *testing.T) {
	svc, _ := newService(t)
	// Carts are long-lived; availability is only enforced at checkout.
	assert.NoError(t, svc.AddItem(context.Background(), "alice", "tee", 500))
}

func TestTotalTracksCurrentPrices(t *testing.T) {
	svc, products := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "alice", "tee", 2))

	total, err := svc.Total(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3998), total)

	// Cart totals follow price changes, unlike order snapshots.
	newPrice := int64(2999)
	_, err = products.Update(ctx, "tee", catalog.Update{PriceCents: &newPrice})
	require.NoError(t, err)

	total, err = svc.Total(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5998), total)
}

func TestTotalSkipsVanishedProducts(t *testing.T) {
	svc, products := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "alice", "tee", 2))

	inactive := false
	_, err := products.Update(ctx, "tee", catalog.Update{Active: &inactive})
	require.NoError(t, err)

	total, err := svc.Total(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, total)

	// The line itself is still in the cart.
	items, err := svc.View(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
