package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderCreator struct {
	mock.Mock
}

func (m *mockOrderCreator) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	args := m.Called(data, extraHeaders)
	resp, _ := args.Get(0).(map[string]interface{})
	return resp, args.Error(1)
}

func TestToSubunits(t *testing.T) {
	cases := map[string]int64{
		"1098":    109800,
		"1098.5":  109850,
		"0.005":   1,
		"10.004":  1000,
		"599.995": 60000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSubunits(decimal.RequireFromString(in)), in)
	}
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	orders := &mockOrderCreator{}
	orders.On("Create", map[string]interface{}{
		"amount":          int64(109800),
		"currency":        "INR",
		"receipt":         "order_1",
		"payment_capture": 1,
	}, map[string]string(nil)).Return(map[string]interface{}{
		"id":         "order_Rz1",
		"amount":     float64(109800),
		"currency":   "INR",
		"receipt":    "order_1",
		"status":     "created",
		"created_at": float64(1700000000),
	}, nil).Once()

	gw := newRazorpayGateway(orders, "")
	order, err := gw.CreateOrder(context.Background(), decimal.NewFromInt(1098), "order_1")
	require.NoError(t, err)
	assert.Equal(t, "order_Rz1", order.ID)
	assert.Equal(t, int64(109800), order.Amount)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(1700000000), order.CreatedAt.Unix())
	orders.AssertExpectations(t)
}

func TestRazorpayGateway_Failures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		orders := &mockOrderCreator{}
		orders.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("BAD_REQUEST_ERROR")).Once()

		_, err := newRazorpayGateway(orders, "INR").CreateOrder(context.Background(), decimal.NewFromInt(10), "r")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("missing id", func(t *testing.T) {
		orders := &mockOrderCreator{}
		orders.On("Create", mock.Anything, mock.Anything).Return(map[string]interface{}{"status": "created"}, nil).Once()

		_, err := newRazorpayGateway(orders, "INR").CreateOrder(context.Background(), decimal.NewFromInt(10), "r")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("non-positive amount never reaches the api", func(t *testing.T) {
		orders := &mockOrderCreator{}
		_, err := newRazorpayGateway(orders, "INR").CreateOrder(context.Background(), decimal.Zero, "r")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
