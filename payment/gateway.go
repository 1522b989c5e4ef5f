// Package payment talks to the Razorpay gateway and tracks each online
// payment attempt from gateway order creation to verification.
package payment

import (
	"context"
	"errors"

	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
)

var (
	ErrGatewayUnavailable = errors.New("payment: gateway order could not be created")
	ErrVerificationFailed = errors.New("payment: verification failed")
	ErrAttemptNotFound    = errors.New("payment: attempt not found")
	ErrInvalidTransition  = errors.New("payment: invalid state transition")
	ErrInvalidAmount      = errors.New("payment: amount must be positive")
)

// Gateway creates provider-side orders. Amounts are in major currency units;
// implementations convert to the provider's subunit exactly once.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*models.GatewayOrder, error)
}

// ToSubunits converts major units to paise, rounding half away from zero.
func ToSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
