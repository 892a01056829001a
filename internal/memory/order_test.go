package memory

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmercier/boutique/internal/domain/order"
)

func sampleOrder(id, userID string) *order.Order {
	return &order.Order{
		ID:     id,
		UserID: userID,
		Lines: []order.Line{
			{ProductID: "tee", Name: "T-Shirt", UnitPriceCents: 1999, Qty: 2},
		},
		Status:    order.StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
}

func TestOrderStoreCreateAndGet(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, sampleOrder("o1", "alice")))
	assert.Error(t, s.Create(ctx, sampleOrder("o1", "alice")))

	o, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, o.Status)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderStoreMutateCommitsOnSuccess(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sampleOrder("o1", "alice")))

	out, err := s.Mutate(ctx, "o1", func(o *order.Order) error {
		o.Status = order.StatusValidated
		now := time.Now().UTC()
		o.ValidatedAt = &now
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, out.Status)

	stored, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, stored.Status)
	assert.NotNil(t, stored.ValidatedAt)
}

func TestOrderStoreMutateRollsBackOnError(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sampleOrder("o1", "alice")))

	_, err := s.Mutate(ctx, "o1", func(o *order.Order) error {
		o.Status = order.StatusCancelled
		o.Lines = nil
		return errors.New("rejected")
	})
	require.Error(t, err)

	stored, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, stored.Status)
	assert.Len(t, stored.Lines, 1)
}

func TestOrderStoreGetReturnsDeepCopy(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sampleOrder("o1", "alice")))

	o, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	o.Lines[0].Qty = 99
	o.Status = order.StatusRefunded

	stored, err := s.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Lines[0].Qty)
	assert.Equal(t, order.StatusCreated, stored.Status)
}

func TestOrderStoreListByUser(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sampleOrder("o1", "alice")))
	require.NoError(t, s.Create(ctx, sampleOrder("o2", "bob")))
	require.NoError(t, s.Create(ctx, sampleOrder("o3", "alice")))

	mine, err := s.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o1", mine[0].ID)
	assert.Equal(t, "o3", mine[1].ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
