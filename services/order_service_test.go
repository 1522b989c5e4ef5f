package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, f *fixture, id, uid string, total int64, pay models.PaymentStatus, created time.Time) {
	t.Helper()
	method := models.PaymentMethodCOD
	if pay == models.PaymentStatusCompleted {
		method = models.PaymentMethodRazorpay
	}
	require.NoError(t, f.store.Orders.Create(context.Background(), &models.Order{
		ID:                id,
		UserID:            uid,
		UserEmail:         uid + "@example.com",
		Items:             []models.OrderItem{{ProductID: "p1", Name: "Tee", Price: decimal.NewFromInt(total), Quantity: 1}},
		Subtotal:          decimal.NewFromInt(total),
		Shipping:          decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.NewFromInt(total),
		Status:            models.OrderStatusPlaced,
		PaymentMethod:     method,
		PaymentStatus:     pay,
		RazorpayPaymentID: "pay_" + id,
		ShippingAddress:   models.ShippingAddress{FullName: "Asha Rao", Phone: "9876543210"},
		CreatedAt:         created,
		UpdatedAt:         created,
	}))
}

func TestOrderStatus_DeliveredStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedOrder(t, f, "o1", "u1", 1000, models.PaymentStatusCompleted, time.Now().Add(-time.Hour))

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.status.now = fixedClock(t1)
	order, err := f.status.UpdateStatus(ctx, "o1", "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	assert.Nil(t, order.DeliveredAt)
	assert.True(t, order.UpdatedAt.Equal(t1))

	t2 := t1.Add(24 * time.Hour)
	f.status.now = fixedClock(t2)
	order, err = f.status.UpdateStatus(ctx, "o1", "Delivered")
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, order.DeliveredAt.Equal(t2))

	f.status.now = fixedClock(t2.Add(30 * time.Minute))
	order, err = f.status.UpdateStatus(ctx, "o1", "delivered")
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, order.DeliveredAt.Equal(t2), "delivered again keeps the first stamp")
	assert.True(t, order.UpdatedAt.Equal(t2.Add(30*time.Minute)))

	t3 := t2.Add(time.Hour)
	f.status.now = fixedClock(t3)
	order, err = f.status.UpdateStatus(ctx, "o1", "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.DeliveredAt, "deliveredAt is never cleared")
	assert.True(t, order.DeliveredAt.Equal(t2))
	assert.True(t, order.UpdatedAt.Equal(t3))

	order, err = f.status.UpdateStatus(ctx, "o1", "pending")
	require.NoError(t, err, "any jump is allowed")
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestOrderStatus_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedOrder(t, f, "o1", "u1", 1000, models.PaymentStatusCompleted, time.Now())

	_, err := f.status.UpdateStatus(ctx, "o1", "returned")
	assert.True(t, utils.IsValidationError(err))
	_, err = f.status.UpdateStatus(ctx, "o1", string(models.OrderStatusPlaced))
	assert.True(t, utils.IsValidationError(err), "the initial status cannot be assigned")
	_, err = f.status.UpdateStatus(ctx, "missing", "packed")
	assert.True(t, utils.IsNotFoundError(err))
}

func TestOrderQueries_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	seedOrder(t, f, "o1", "u1", 1000, models.PaymentStatusCompleted, now.Add(-2*time.Hour))
	seedOrder(t, f, "o2", "u1", 500, models.PaymentStatusPending, now.Add(-time.Hour))
	seedOrder(t, f, "o3", "u2", 700, models.PaymentStatusPending, now)

	mine, err := f.queries.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o2", mine[0].ID, "newest first")

	_, err = f.queries.GetUserOrder(ctx, "u1", "o3")
	assert.True(t, utils.IsNotFoundError(err))
	order, err := f.queries.GetUserOrder(ctx, "u2", "o3")
	require.NoError(t, err)
	assert.Equal(t, "o3", order.ID)

	_, err = f.queries.ListUserOrders(ctx, "")
	assert.True(t, utils.IsUnauthenticatedError(err))
}

func TestOrderQueries_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)
	f.queries.now = fixedClock(now)
	midnight := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)

	seedOrder(t, f, "old", "u1", 1000, models.PaymentStatusCompleted, midnight.Add(-time.Minute))
	seedOrder(t, f, "today1", "u1", 500, models.PaymentStatusPending, midnight)
	seedOrder(t, f, "today2", "u2", 2000, models.PaymentStatusCompleted, now.Add(-time.Hour))
	_, err := f.status.UpdateStatus(ctx, "today1", "pending")
	require.NoError(t, err)
	_, err = f.status.UpdateStatus(ctx, "old", "delivered")
	require.NoError(t, err)

	stats, err := f.queries.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, "3000", stats.TotalRevenue.String(), "completed payments only")
	assert.Equal(t, 2, stats.TodayOrders)
	assert.Equal(t, "2500", stats.TodaySales.String())
	assert.Len(t, stats.RecentOrders, 3)
}

func TestOrderQueries_Payments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	seedOrder(t, f, "o1", "u1", 1000, models.PaymentStatusCompleted, now.Add(-time.Hour))
	seedOrder(t, f, "o2", "u1", 500, models.PaymentStatusPending, now)

	all, summary, err := f.queries.Payments(ctx, PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, "1500", summary.TotalAmount.String())
	assert.Equal(t, "INR", all[0].Currency)

	done, _, err := f.queries.Payments(ctx, PaymentFilter{Status: models.PaymentStatusCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "o1", done[0].OrderID)

	found, _, err := f.queries.Payments(ctx, PaymentFilter{Search: "PAY_O2"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "o2", found[0].OrderID)
}

func TestOrderQueries_WatchOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedOrder(t, f, "o1", "u1", 1000, models.PaymentStatusCompleted, time.Now())

	var mu sync.Mutex
	var seen []models.OrderStatus
	stop, err := f.queries.WatchOrders(ctx, repository.OrderFilter{}, func(list []models.Order) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, list[0].Status)
	})
	require.NoError(t, err)
	defer stop()

	_, err = f.status.UpdateStatus(ctx, "o1", "packed")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPlaced, models.OrderStatusPacked}, seen)
}
