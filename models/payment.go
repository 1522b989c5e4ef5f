package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayOrder is the payment-provider side record created before the hosted UI opens.
// Amount is in the smallest currency subunit (paise).
type GatewayOrder struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Receipt   string    `json:"receipt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentOutcome is how an order was paid for when it reaches the order writer.
type PaymentOutcome struct {
	Method            PaymentMethod
	Status            PaymentStatus
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// OnlinePayment is a verified gateway payment.
func OnlinePayment(orderID, paymentID, signature string) PaymentOutcome {
	return PaymentOutcome{
		Method:            PaymentMethodRazorpay,
		Status:            PaymentStatusCompleted,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signature,
	}
}

// CashOnDelivery is settled at the door.
func CashOnDelivery() PaymentOutcome {
	return PaymentOutcome{Method: PaymentMethodCOD, Status: PaymentStatusPending}
}

// Totals are the money fields of an order in major currency units.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
