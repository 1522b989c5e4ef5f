package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/payment"
	"github.com/Govind-619/Clomora/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shopper = models.Identity{UID: "u1", Email: "asha@example.com", Name: "Asha Rao"}

func TestCheckout_OnlineFreeShipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", init.KeyID)
	assert.Equal(t, "1000", init.Totals.Subtotal.String())
	assert.True(t, init.Totals.Shipping.IsZero())
	assert.Equal(t, "1000", init.Totals.Total.String())
	assert.Equal(t, int64(100000), init.GatewayOrder.Amount)
	assert.Equal(t, "9876543210", init.Prefill.Contact)

	gwID := init.GatewayOrder.ID
	order, err := f.checkout.ConfirmOnline(ctx, shopper, gwID, "pay_1", payment.Sign(testSecret, gwID, "pay_1"))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, models.PaymentMethodRazorpay, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, gwID, order.RazorpayOrderID)
	assert.Equal(t, "pay_1", order.RazorpayPaymentID)
	assert.Equal(t, "1000", order.Total.String())
	assert.True(t, order.Tax.IsZero())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Product p1", order.Items[0].Name)
	assert.Equal(t, "https://cdn.example.com/p1.jpg", order.Items[0].Image)
	assert.Equal(t, "Asha Rao", order.ShippingAddress.FullName)

	assert.Empty(t, f.cartLines(t, key), "cart is cleared")
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, 1, f.orderCount(t))

	_, err = f.checkout.ConfirmOnline(ctx, shopper, gwID, "pay_1", payment.Sign(testSecret, gwID, "pay_1"))
	require.Error(t, err, "an attempt is confirmed once")
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCheckout_OnlineKeepsLinesAddedAfterInitiate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.product("p2", 300)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	f.fillCart(t, key, "p2", 1)

	gwID := init.GatewayOrder.ID
	order, err := f.checkout.ConfirmOnline(ctx, shopper, gwID, "pay_2", payment.Sign(testSecret, gwID, "pay_2"))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "1000", order.Total.String())

	lines := f.cartLines(t, key)
	require.Len(t, lines, 1, "only the paid lines leave the cart")
	assert.Equal(t, "p2", lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCheckout_OnlineFlatShipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 400)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	assert.Equal(t, "99", init.Totals.Shipping.String())
	assert.Equal(t, "899", init.Totals.Total.String())
	require.Len(t, f.gateway.amounts, 1)
	assert.Equal(t, "899", f.gateway.amounts[0].String(), "gateway is charged subtotal plus shipping")
}

func TestCheckout_CODNeverTouchesGateway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 1)
	addr := f.address(t, shopper.UID, true)

	order, err := f.checkout.PlaceCOD(ctx, shopper, key, addr.ID)
	require.NoError(t, err)

	assert.Zero(t, f.gateway.calls)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, order.RazorpayOrderID)
	assert.Equal(t, "599", order.Total.String())
	assert.Empty(t, f.cartLines(t, key))
	assert.Equal(t, 1, f.notifier.count())
}

func TestCheckout_AbandonLeavesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)
	before := f.cartLines(t, key)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	require.NoError(t, f.checkout.Abandon(ctx, shopper, init.GatewayOrder.ID))

	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, before, f.cartLines(t, key))
	assert.Zero(t, f.notifier.count())

	require.NoError(t, f.checkout.Abandon(ctx, shopper, "order_unknown"), "unknown attempts are ignored")
}

func TestCheckout_RejectedSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)
	before := f.cartLines(t, key)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)

	_, err = f.checkout.ConfirmOnline(ctx, shopper, init.GatewayOrder.ID, "pay_1", "deadbeef")
	require.Error(t, err)
	assert.True(t, utils.IsGatewayRejectedError(err))
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, before, f.cartLines(t, key))
}

func TestCheckout_GatewayUnavailable(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("connection refused")
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 1)
	addr := f.address(t, shopper.UID, true)

	_, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.Error(t, err)
	assert.True(t, utils.IsGatewayUnavailableError(err))
	assert.Zero(t, f.orderCount(t))
	assert.Len(t, f.cartLines(t, key), 1)
}

func TestCheckout_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	addr := f.address(t, shopper.UID, true)

	_, err := f.checkout.PlaceCOD(ctx, shopper, key, addr.ID)
	assert.True(t, utils.IsValidationError(err), "empty cart")

	f.product("p1", 500)
	f.fillCart(t, key, "p1", 1)
	_, err = f.checkout.PlaceCOD(ctx, shopper, key, "")
	assert.True(t, utils.IsValidationError(err), "no address selected")

	_, err = f.checkout.PlaceCOD(ctx, shopper, key, "missing")
	assert.True(t, utils.IsNotFoundError(err))

	_, err = f.checkout.PlaceCOD(ctx, models.Identity{}, key, addr.ID)
	assert.True(t, utils.IsUnauthenticatedError(err))

	_, err = f.checkout.ConfirmOnline(ctx, shopper, "order_unknown", "pay_1", "sig")
	assert.True(t, utils.IsNotFoundError(err))
}

func TestCheckout_PaidOrderNotSaved(t *testing.T) {
	f := newFixture(t)
	f.writer.orders = failingOrders{f.store.Orders}
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 2)
	addr := f.address(t, shopper.UID, true)

	init, err := f.checkout.InitiateOnline(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	gwID := init.GatewayOrder.ID

	_, err = f.checkout.ConfirmOnline(ctx, shopper, gwID, "pay_1", payment.Sign(testSecret, gwID, "pay_1"))
	require.Error(t, err)
	assert.True(t, utils.IsPersistenceFailureError(err))
	assert.Equal(t, utils.ErrPaidOrderSaveFailed, utils.GetAppError(err).Message)
	assert.Len(t, f.cartLines(t, key), 1, "cart survives a failed write")
	assert.Zero(t, f.notifier.count())
}

func TestCheckout_NotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("whatsapp down")
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 1)
	addr := f.address(t, shopper.UID, true)

	order, err := f.checkout.PlaceCOD(ctx, shopper, key, addr.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCheckout_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := UserCartKey(shopper.UID)
	f.product("p1", 500)
	f.fillCart(t, key, "p1", 1)
	def := f.address(t, shopper.UID, true)
	f.address(t, shopper.UID, false)

	summary, err := f.checkout.Summary(ctx, shopper, key)
	require.NoError(t, err)
	assert.Equal(t, def.ID, summary.DefaultAddressID)
	assert.Len(t, summary.Addresses, 2)
	assert.Equal(t, 1, summary.Cart.TotalItems)
	assert.Equal(t, "599", summary.Cart.Totals.Total.String())
}
