package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmercier/boutique/internal/auth"
	"github.com/tmercier/boutique/internal/memory"
	"github.com/tmercier/boutique/internal/seed"
)

func TestDemoSeedsCatalogAndAccounts(t *testing.T) {
	stores := memory.NewStores()
	ctx := context.Background()

	require.NoError(t, seed.Demo(ctx, stores.Products, stores.Users))

	products, err := stores.Products.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 9)

	count, err := stores.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// The documented credentials actually log in, with the right roles.
	authSvc := auth.NewService(stores.Users, auth.NewSessionManager([]byte("pepper")))
	adminUser, _, err := authSvc.Login(ctx, seed.AdminEmail, seed.AdminPassword)
	require.NoError(t, err)
	assert.True(t, adminUser.Admin)

	alice, _, err := authSvc.Login(ctx, "alice@example.com", seed.DemoPassword)
	require.NoError(t, err)
	assert.False(t, alice.Admin)
}

func TestDemoIsNotIdempotent(t *testing.T) {
	stores := memory.NewStores()
	ctx := context.Background()

	require.NoError(t, seed.Demo(ctx, stores.Products, stores.Users))
	assert.Error(t, seed.Demo(ctx, stores.Products, stores.Users), "second seed collides on emails")
}
