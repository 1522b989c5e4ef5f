package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*models.GatewayOrder, error) {
	args := m.Called(ctx, amount, receipt)
	order, _ := args.Get(0).(*models.GatewayOrder)
	return order, args.Error(1)
}

func checkoutFor(uid string) Checkout {
	return Checkout{
		Identity: models.Identity{UID: uid, Email: uid + "@example.com"},
		CartKey:  "user:" + uid,
		Lines: []models.CartLine{{
			Product:  models.Product{ID: "p1", Name: "Tee", Price: decimal.NewFromInt(999)},
			Quantity: 1,
		}},
	}
}

func newTestOrchestrator(gw Gateway) *Orchestrator {
	return NewOrchestrator(gw, testSecret)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StateCreatingGatewayOrder))
	assert.True(t, CanTransition(StateAwaitingUserPayment, StateAbandoned))
	assert.True(t, CanTransition(StateVerifying, StateRejected))
	assert.False(t, CanTransition(StateIdle, StateConfirmed))
	assert.False(t, CanTransition(StateConfirmed, StateVerifying))
	assert.False(t, CanTransition(StateAbandoned, StateVerifying))
	assert.True(t, StateConfirmed.Terminal())
	assert.False(t, StateAwaitingUserPayment.Terminal())
}

func TestOrchestrator_HappyPath(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, decimal.NewFromInt(999), mock.AnythingOfType("string")).
		Return(&models.GatewayOrder{ID: "order_abc", Amount: 99900, Currency: "INR"}, nil).Once()
	o := newTestOrchestrator(gw)

	attempt, err := o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(999))
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingUserPayment, attempt.State)
	assert.Equal(t, "order_abc", attempt.GatewayOrderID())

	confirmed, err := o.Verify("u1", "order_abc", "pay_xyz", testSignature)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, confirmed.State)

	outcome := confirmed.Outcome()
	assert.Equal(t, models.PaymentMethodRazorpay, outcome.Method)
	assert.Equal(t, models.PaymentStatusCompleted, outcome.Status)
	assert.Equal(t, "pay_xyz", outcome.RazorpayPaymentID)

	_, err = o.Verify("u1", "order_abc", "pay_xyz", testSignature)
	assert.ErrorIs(t, err, ErrInvalidTransition, "a confirmed attempt cannot be verified twice")
	gw.AssertExpectations(t)
}

func TestOrchestrator_GatewayFailureRegistersNothing(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	o := newTestOrchestrator(gw)

	_, err := o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(&models.GatewayOrder{}, nil).Once()
	_, err = o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	assert.Empty(t, o.attempts)
}

func TestOrchestrator_BadSignatureRejects(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.GatewayOrder{ID: "order_abc"}, nil).Once()
	o := newTestOrchestrator(gw)

	_, err := o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(999))
	require.NoError(t, err)

	attempt, err := o.Verify("u1", "order_abc", "pay_xyz", "deadbeef")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	require.NotNil(t, attempt)
	assert.Equal(t, StateRejected, attempt.State)
}

func TestOrchestrator_OwnershipAndAbandon(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.GatewayOrder{ID: "order_abc"}, nil).Once()
	o := newTestOrchestrator(gw)

	_, err := o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(999))
	require.NoError(t, err)

	_, err = o.Verify("intruder", "order_abc", "pay_xyz", testSignature)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Abandon("intruder", "order_abc")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	abandoned, err := o.Abandon("u1", "order_abc")
	require.NoError(t, err)
	assert.Equal(t, StateAbandoned, abandoned.State)

	_, err = o.Verify("u1", "order_abc", "pay_xyz", testSignature)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrchestrator_PrunesStaleAttempts(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.GatewayOrder{ID: "order_old"}, nil).Once()
	gw.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.GatewayOrder{ID: "order_new"}, nil).Once()
	o := NewOrchestrator(gw, testSecret, WithAttemptTTL(time.Hour), WithClock(func() time.Time { return now }))

	_, err := o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(10))
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = o.Begin(context.Background(), checkoutFor("u1"), decimal.NewFromInt(10))
	require.NoError(t, err)

	_, ok := o.Lookup("order_old")
	assert.False(t, ok)
	_, ok = o.Lookup("order_new")
	assert.True(t, ok)
}

func TestOrchestrator_RawEndpoints(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CreateOrder", mock.Anything, decimal.NewFromInt(1098), mock.AnythingOfType("string")).
		Return(&models.GatewayOrder{ID: "order_raw", Amount: 109800}, nil).Once()
	o := newTestOrchestrator(gw)

	order, err := o.CreateGatewayOrder(context.Background(), decimal.NewFromInt(1098))
	require.NoError(t, err)
	assert.Equal(t, int64(109800), order.Amount)

	assert.True(t, o.VerifyPayment("order_abc", "pay_xyz", testSignature))
	assert.False(t, o.VerifyPayment("order_abc", "pay_xyz", testSignature[1:]))
	assert.Empty(t, o.attempts, "raw endpoints do not register attempts")
}
