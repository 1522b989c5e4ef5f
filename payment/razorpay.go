package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/Clomora/models"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// orderCreator is the slice of the razorpay client used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders through the Razorpay Orders API.
type RazorpayGateway struct {
	orders   orderCreator
	currency string
}

// NewRazorpayGateway builds a gateway from API credentials.
func NewRazorpayGateway(keyID, keySecret, currency string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpayGateway(client.Order, currency)
}

func newRazorpayGateway(orders orderCreator, currency string) *RazorpayGateway {
	if currency == "" {
		currency = "INR"
	}
	return &RazorpayGateway{orders: orders, currency: currency}
}

// CreateOrder creates a captured-on-payment order for amount.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*models.GatewayOrder, error) {
	paise := ToSubunits(amount)
	if paise <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := g.orders.Create(map[string]interface{}{
		"amount":          paise,
		"currency":        g.currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	id, _ := resp["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: response has no order id", ErrGatewayUnavailable)
	}

	order := &models.GatewayOrder{
		ID:       id,
		Amount:   paise,
		Currency: g.currency,
		Receipt:  receipt,
		Status:   "created",
	}
	if v, ok := asInt64(resp["amount"]); ok {
		order.Amount = v
	}
	if v, ok := resp["currency"].(string); ok && v != "" {
		order.Currency = v
	}
	if v, ok := resp["receipt"].(string); ok && v != "" {
		order.Receipt = v
	}
	if v, ok := resp["status"].(string); ok && v != "" {
		order.Status = v
	}
	if v, ok := asInt64(resp["created_at"]); ok {
		order.CreatedAt = time.Unix(v, 0).UTC()
	}
	return order, nil
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
