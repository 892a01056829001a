package snapshot_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/user"
	"github.com/tmercier/boutique/internal/memory"
	"github.com/tmercier/boutique/internal/snapshot"
)

func export(t *testing.T, stores *memory.Stores) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, snapshot.NewExporter(stores).WriteTo(&buf))

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.NoError(t, zr.Close())

	var dump map[string]any
	require.NoError(t, json.Unmarshal(raw, &dump))
	return dump
}

func TestExportEmptyStores(t *testing.T) {
	dump := export(t, memory.NewStores())

	assert.Equal(t, float64(snapshot.FormatVersion), dump["version"])
	assert.NotEmpty(t, dump["taken_at"])
	for _, key := range []string{"products", "orders", "payments", "invoices", "deliveries", "users"} {
		assert.Empty(t, dump[key], key)
	}
}

func TestExportRoundTrip(t *testing.T) {
	stores := memory.NewStores()
	ctx := context.Background()

	require.NoError(t, stores.Products.Add(ctx, &catalog.Product{
		ID: "tee", Name: "T-Shirt", PriceCents: 1999, StockQty: 10, Active: true,
	}))
	require.NoError(t, stores.Carts.Add(ctx, "alice", "tee", 2))
	now := time.Now().UTC()
	validated := now.Add(time.Minute)
	require.NoError(t, stores.Orders.Create(ctx, &order.Order{
		ID:     "o1",
		UserID: "alice",
		Lines: []order.Line{
			{ProductID: "tee", Name: "T-Shirt", UnitPriceCents: 1999, Qty: 2},
		},
		Status:      order.StatusValidated,
		CreatedAt:   now,
		ValidatedAt: &validated,
	}))
	require.NoError(t, stores.Users.Create(ctx, &user.User{
		ID: "alice", Email: "alice@example.com", PasswordHash: []byte("secret-hash"),
		FirstName: "Alice", LastName: "Martin",
	}))

	dump := export(t, stores)

	products := dump["products"].([]any)
	require.Len(t, products, 1)
	p := products[0].(map[string]any)
	assert.Equal(t, "T-Shirt", p["name"])
	assert.Equal(t, float64(1999), p["price_cents"])

	carts := dump["carts"].(map[string]any)
	aliceCart := carts["alice"].([]any)
	require.Len(t, aliceCart, 1)
	assert.Equal(t, float64(2), aliceCart[0].(map[string]any)["qty"])

	orders := dump["orders"].([]any)
	require.Len(t, orders, 1)
	o := orders[0].(map[string]any)
	assert.Equal(t, "VALIDEE", o["status"])
	assert.Equal(t, float64(3998), o["total_cents"])
	assert.NotEmpty(t, o["validated_at"])
	_, hasPaidAt := o["paid_at"]
	assert.False(t, hasPaidAt, "unset timestamps must be omitted")

	users := dump["users"].([]any)
	require.Len(t, users, 1)
	u := users[0].(map[string]any)
	assert.Equal(t, "alice@example.com", u["email"])
	_, hasHash := u["password_hash"]
	assert.False(t, hasHash, "password material must never be exported")
}
