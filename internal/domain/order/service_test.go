package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/inventory"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/payment"
	"github.com/tmercier/boutique/internal/domain/shipping"
	"github.com/tmercier/boutique/internal/domain/user"
	"github.com/tmercier/boutique/internal/memory"
)

var (
	alice = order.Actor{UserID: "alice"}
	bob   = order.Actor{UserID: "bob"}
	admin = order.Actor{UserID: "admin", Admin: true}
)

func goodCard() payment.Card {
	return payment.Card{Number: payment.TestCardNumber, ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

func declinedCard() payment.Card {
	// Luhn-valid, but not the designated test card.
	return payment.Card{Number: "4539578763621486", ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

type fixture struct {
	stores *memory.Stores
	carts  *cart.Service
	svc    *order.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memory.NewStores()
	carts := cart.NewService(stores.Carts, stores.Products)
	svc := order.NewService(
		stores.Products,
		stores.Products,
		carts,
		stores.Orders,
		stores.Payments,
		payment.NewSimGateway(),
		stores.Invoices,
		stores.Deliveries,
		stores.Users,
		zaptest.NewLogger(t),
	)

	ctx := context.Background()
	for _, p := range []catalog.Product{
		{ID: "tee", Name: "T-Shirt Classic Blanc", PriceCents: 1999, StockQty: 10, Active: true},
		{ID: "sweat", Name: "Sweat à Capuche Gris", PriceCents: 4999, StockQty: 3, Active: true},
	} {
		require.NoError(t, stores.Products.Add(ctx, &p))
	}
	require.NoError(t, stores.Users.Create(ctx, &user.User{
		ID: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Martin",
		Address: "12 Rue des Fleurs, 69001 Lyon",
	}))

	return &fixture{stores: stores, carts: carts, svc: svc}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.stores.Products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.StockQty
}

// checkoutOrder fills alice's cart with 2 tees and 1 sweat and checks out.
func (f *fixture) checkoutOrder(t *testing.T) *order.Order {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.carts.AddItem(ctx, "alice", "tee", 2))
	require.NoError(t, f.carts.AddItem(ctx, "alice", "sweat", 1))
	o, err := f.svc.Checkout(ctx, "alice")
	require.NoError(t, err)
	return o
}

// paidOrder moves a fresh checkout through validation and payment.
func (f *fixture) paidOrder(t *testing.T) *order.Order {
	t.Helper()
	ctx := context.Background()
	o := f.checkoutOrder(t)
	_, err := f.svc.Validate(ctx, admin, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, alice, o.ID, goodCard())
	require.NoError(t, err)
	o, err = f.svc.GetForActor(ctx, alice, o.ID)
	require.NoError(t, err)
	return o
}

func TestCheckoutCreatesOrderAndReservesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.checkoutOrder(t)

	assert.Equal(t, order.StatusCreated, o.Status)
	assert.Equal(t, int64(2*1999+4999), o.TotalCents())
	require.Len(t, o.Lines, 2)
	assert.Equal(t, "T-Shirt Classic Blanc", o.Lines[0].Name)
	assert.Equal(t, int64(1999), o.Lines[0].UnitPriceCents)

	assert.Equal(t, 8, f.stock(t, "tee"))
	assert.Equal(t, 2, f.stock(t, "sweat"))

	items, err := f.carts.View(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items, "checkout must clear the cart")
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), "alice")
	assert.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestCheckoutInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.carts.AddItem(ctx, "alice", "tee", 2))
	require.NoError(t, f.carts.AddItem(ctx, "alice", "sweat", 3))
	// Second shopper takes the last sweats first.
	require.NoError(t, f.carts.AddItem(ctx, "bob", "sweat", 2))
	_, err := f.svc.Checkout(ctx, "bob")
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, "alice")
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "sweat", stockErr.ProductID)

	// No partial reservation, cart intact, no order stored for alice.
	assert.Equal(t, 10, f.stock(t, "tee"))
	assert.Equal(t, 1, f.stock(t, "sweat"))
	items, _ := f.carts.View(ctx, "alice")
	assert.Len(t, items, 2)
	mine, _ := f.svc.ListForUser(ctx, "alice")
	assert.Empty(t, mine)
}

func TestCheckoutFreezesPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.checkoutOrder(t)
	frozen := o.TotalCents()

	newPrice := int64(2999)
	_, err := f.stores.Products.Update(ctx, "tee", catalog.Update{PriceCents: &newPrice})
	require.NoError(t, err)

	got, err := f.svc.GetForActor(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, frozen, got.TotalCents())
	assert.Equal(t, int64(1999), got.Lines[0].UnitPriceCents)
}

func TestValidateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	o := f.checkoutOrder(t)

	_, err := f.svc.Validate(context.Background(), alice, o.ID)
	assert.ErrorIs(t, err, order.ErrPermissionDenied)

	got, err := f.svc.Validate(context.Background(), admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, got.Status)
	assert.NotNil(t, got.ValidatedAt)
}

func TestPaySuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.checkoutOrder(t)
	_, err := f.svc.Validate(ctx, admin, o.ID)
	require.NoError(t, err)

	rec, err := f.svc.Pay(ctx, alice, o.ID, goodCard())
	require.NoError(t, err)
	assert.True(t, rec.Succeeded)
	assert.Equal(t, o.TotalCents(), rec.AmountCents)

	paid, err := f.svc.GetForActor(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, rec.ID, paid.PaymentID)

	inv, err := f.stores.Invoices.ByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, paid.InvoiceID)
	assert.Equal(t, o.TotalCents(), inv.AmountCents)
}

func TestPayDeclinedLeavesOrderPayable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.checkoutOrder(t)
	_, err := f.svc.Validate(ctx, admin, o.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, alice, o.ID, declinedCard())
	assert.ErrorIs(t, err, payment.ErrDeclined)

	got, err := f.svc.GetForActor(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, got.Status)
	assert.Nil(t, got.PaidAt)
	assert.Empty(t, got.InvoiceID)

	// The declined attempt is on record, flagged not-succeeded.
	records, err := f.stores.Payments.ByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Succeeded)

	// No invoice for a failed charge.
	_, err = f.stores.Invoices.ByOrder(ctx, o.ID)
	assert.Error(t, err)

	// A retry with a good card succeeds.
	_, err = f.svc.Pay(ctx, alice, o.ID, goodCard())
	require.NoError(t, err)
}

func TestPayRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.checkoutOrder(t)
	_, err := f.svc.Validate(ctx, admin, o.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, bob, o.ID, goodCard())
	assert.ErrorIs(t, err, order.ErrPermissionDenied)
}

func TestPayBeforeValidation(t *testing.T) {
	f := newFixture(t)
	o := f.checkoutOrder(t)

	_, err := f.svc.Pay(context.Background(), alice, o.ID, goodCard())
	var transitionErr *order.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, order.StatusCreated, transitionErr.From)
}

func TestShipAndDeliver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.paidOrder(t)

	shipped, err := f.svc.Ship(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, shipped.Status)
	require.NotNil(t, shipped.Delivery)
	assert.Equal(t, shipping.DefaultCarrier, shipped.Delivery.Carrier)
	assert.NotEmpty(t, shipped.Delivery.TrackingNumber)
	assert.Equal(t, "12 Rue des Fleurs, 69001 Lyon", shipped.Delivery.Address)
	assert.Equal(t, shipping.StatusInTransit, shipped.Delivery.Status)

	delivered, err := f.svc.Deliver(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, delivered.Status)
	assert.Equal(t, shipping.StatusDelivered, delivered.Delivery.Status)
	assert.NotNil(t, delivered.DeliveredAt)
}

func TestDeliverBeforeShip(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t)

	_, err := f.svc.Deliver(context.Background(), admin, o.ID)
	var transitionErr *order.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.checkoutOrder(t)
	assert.Equal(t, 8, f.stock(t, "tee"))

	got, err := f.svc.Cancel(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	assert.Equal(t, 10, f.stock(t, "tee"))
	assert.Equal(t, 3, f.stock(t, "sweat"))
}

func TestCancelPaidOrderRejected(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t)

	_, err := f.svc.Cancel(context.Background(), alice, o.ID)
	var transitionErr *order.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	// Stock stays reserved.
	assert.Equal(t, 8, f.stock(t, "tee"))
}

func TestCancelRequiresOwner(t *testing.T) {
	f := newFixture(t)
	o := f.checkoutOrder(t)

	_, err := f.svc.Cancel(context.Background(), bob, o.ID)
	assert.ErrorIs(t, err, order.ErrPermissionDenied)
}

func TestRefundFullByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.paidOrder(t)

	got, err := f.svc.Refund(ctx, admin, o.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, order.StatusRefunded, got.Status)
	assert.Equal(t, o.TotalCents(), got.RefundedCents)
	assert.NotNil(t, got.RefundedAt)

	// Goods come back on the shelf.
	assert.Equal(t, 10, f.stock(t, "tee"))
	assert.Equal(t, 3, f.stock(t, "sweat"))
}

func TestRefundPartialAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.paidOrder(t)

	got, err := f.svc.Refund(ctx, admin, o.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.RefundedCents)
	// Stock restitution is full regardless of the amount refunded.
	assert.Equal(t, 10, f.stock(t, "tee"))
}

func TestRefundExceedingTotal(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t)

	_, err := f.svc.Refund(context.Background(), admin, o.ID, o.TotalCents()+1)
	assert.ErrorIs(t, err, order.ErrRefundExceedsTotal)

	got, err := f.svc.GetForActor(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.Equal(t, 8, f.stock(t, "tee"))
}

func TestRefundRequiresAdminAndPaidOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.checkoutOrder(t)
	_, err := f.svc.Refund(ctx, alice, o.ID, 0)
	assert.ErrorIs(t, err, order.ErrPermissionDenied)

	_, err = f.svc.Refund(ctx, admin, o.ID, 0)
	var transitionErr *order.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestRefundAfterDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.paidOrder(t)
	_, err := f.svc.Ship(ctx, admin, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Deliver(ctx, admin, o.ID)
	require.NoError(t, err)

	got, err := f.svc.Refund(ctx, admin, o.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, order.StatusRefunded, got.Status)
	assert.Equal(t, 10, f.stock(t, "tee"))
}

func TestVisibilityRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.checkoutOrder(t)

	_, err := f.svc.GetForActor(ctx, bob, o.ID)
	assert.ErrorIs(t, err, order.ErrPermissionDenied)

	_, err = f.svc.GetForActor(ctx, admin, o.ID)
	assert.NoError(t, err)

	_, err = f.svc.ListAll(ctx, alice)
	assert.ErrorIs(t, err, order.ErrPermissionDenied)

	all, err := f.svc.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
