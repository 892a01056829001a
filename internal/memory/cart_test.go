package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmercier/boutique/internal/domain/cart"
)

func TestCartAddMergesLines(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "alice", "tee", 2))
	require.NoError(t, s.Add(ctx, "alice", "cap", 1))
	require.NoError(t, s.Add(ctx, "alice", "tee", 3))

	items, err := s.View(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, cart.Item{ProductID: "tee", Qty: 5}, items[0])
	assert.Equal(t, cart.Item{ProductID: "cap", Qty: 1}, items[1])
}

func TestCartAddRejectsBadQty(t *testing.T) {
	s := NewCartStore()
	assert.ErrorIs(t, s.Add(context.Background(), "alice", "tee", 0), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, s.Add(context.Background(), "alice", "tee", -1), cart.ErrInvalidQuantity)
}

func TestCartRemoveSemantics(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "alice", "tee", 5))

	// Partial removal decrements.
	require.NoError(t, s.Remove(ctx, "alice", "tee", 2))
	items, _ := s.View(ctx, "alice")
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	// Removing more than present deletes the line.
	require.NoError(t, s.Remove(ctx, "alice", "tee", 10))
	items, _ = s.View(ctx, "alice")
	assert.Empty(t, items)

	// qty 0 removes the whole line.
	require.NoError(t, s.Add(ctx, "alice", "cap", 2))
	require.NoError(t, s.Remove(ctx, "alice", "cap", 0))
	items, _ = s.View(ctx, "alice")
	assert.Empty(t, items)

	// Unknown line is a no-op.
	assert.NoError(t, s.Remove(ctx, "alice", "ghost", 1))
}

func TestCartsAreIndependent(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "alice", "tee", 1))
	require.NoError(t, s.Add(ctx, "bob", "tee", 4))

	require.NoError(t, s.Clear(ctx, "alice"))

	aliceItems, _ := s.View(ctx, "alice")
	bobItems, _ := s.View(ctx, "bob")
	assert.Empty(t, aliceItems)
	require.Len(t, bobItems, 1)
	assert.Equal(t, 4, bobItems[0].Qty)
}

func TestCartViewReturnsCopy(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "alice", "tee", 2))

	items, _ := s.View(ctx, "alice")
	items[0].Qty = 99

	fresh, _ := s.View(ctx, "alice")
	assert.Equal(t, 2, fresh[0].Qty)
}
