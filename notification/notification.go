// Package notification tells customers and downstream systems that an
// order was placed. Every channel is best-effort: callers log failures and
// carry on.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderNotice is the payload sent when an order is placed.
type OrderNotice struct {
	OrderID       string          `json:"orderId"`
	UserID        string          `json:"userId,omitempty"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"itemCount,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

// Notifier delivers an order-placed notice over one channel.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, n OrderNotice) error
}

// Message is the customer-facing confirmation text.
func Message(n OrderNotice) string {
	return fmt.Sprintf("Hi %s 👋\n\nYour order has been placed successfully!\n\nOrder ID: %s\nAmount: ₹%s\n\nWe will notify you once shipped 🚚",
		n.Name, n.OrderID, n.Total.String())
}

// Multi fans a notice out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyOrderPlaced(ctx context.Context, n OrderNotice) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.NotifyOrderPlaced(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards notices.
type Nop struct{}

func (Nop) NotifyOrderPlaced(context.Context, OrderNotice) error { return nil }
