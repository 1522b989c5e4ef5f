package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultAttemptTTL is how long an attempt stays in the registry.
const DefaultAttemptTTL = 2 * time.Hour

// Orchestrator drives online payment attempts. Attempts are keyed by the
// gateway order id and kept in process memory.
type Orchestrator struct {
	gateway Gateway
	secret  string
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	attempts map[string]*Attempt
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAttemptTTL overrides DefaultAttemptTTL.
func WithAttemptTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) { o.ttl = ttl }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator verifying signatures with secret.
func NewOrchestrator(gateway Gateway, secret string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:  gateway,
		secret:   secret,
		ttl:      DefaultAttemptTTL,
		now:      time.Now,
		attempts: make(map[string]*Attempt),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateGatewayOrder creates a bare gateway order for amount.
func (o *Orchestrator) CreateGatewayOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error) {
	receipt := fmt.Sprintf("order_%d", o.now().UnixMilli())
	order, err := o.gateway.CreateOrder(ctx, amount, receipt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyPayment checks a gateway signature without touching any attempt.
func (o *Orchestrator) VerifyPayment(orderID, paymentID, signature string) bool {
	return VerifySignature(o.secret, orderID, paymentID, signature)
}

// Begin creates the gateway order for checkout and registers an attempt
// awaiting the customer's payment.
func (o *Orchestrator) Begin(ctx context.Context, checkout Checkout, amount decimal.Decimal) (*Attempt, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := o.now()
	attempt := &Attempt{
		ID:        uuid.New().String(),
		State:     StateIdle,
		Amount:    amount,
		Checkout:  checkout,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := attempt.moveTo(StateCreatingGatewayOrder, now); err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("order_%d", now.UnixMilli())
	order, err := o.gateway.CreateOrder(ctx, amount, receipt)
	if err != nil {
		utils.LogError("Gateway order creation failed for user %s: %v", checkout.Identity.UID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if order == nil || order.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrGatewayUnavailable)
	}
	attempt.GatewayOrder = order
	if err := attempt.moveTo(StateAwaitingUserPayment, o.now()); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.pruneLocked()
	o.attempts[order.ID] = attempt
	o.mu.Unlock()

	utils.LogInfo("Payment attempt %s awaiting payment on gateway order %s", attempt.ID, order.ID)
	return attempt.snapshot(), nil
}

// Verify checks the gateway signature for the attempt registered under
// gatewayOrderID. It returns the attempt in CONFIRMED state, or
// ErrVerificationFailed with the attempt in REJECTED state.
func (o *Orchestrator) Verify(userID, gatewayOrderID, paymentID, signature string) (*Attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	attempt, ok := o.attempts[gatewayOrderID]
	if !ok || attempt.Checkout.Identity.UID != userID {
		return nil, ErrAttemptNotFound
	}
	if err := attempt.moveTo(StateVerifying, o.now()); err != nil {
		return nil, err
	}
	attempt.PaymentID = paymentID
	attempt.Signature = signature

	if !VerifySignature(o.secret, gatewayOrderID, paymentID, signature) {
		if err := attempt.moveTo(StateRejected, o.now()); err != nil {
			return nil, err
		}
		utils.LogError("Payment verification failed for gateway order %s, payment %s", gatewayOrderID, paymentID)
		return attempt.snapshot(), ErrVerificationFailed
	}

	if err := attempt.moveTo(StateConfirmed, o.now()); err != nil {
		return nil, err
	}
	utils.LogInfo("Payment %s confirmed for gateway order %s", paymentID, gatewayOrderID)
	return attempt.snapshot(), nil
}

// Abandon records that the customer closed the hosted payment UI.
func (o *Orchestrator) Abandon(userID, gatewayOrderID string) (*Attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	attempt, ok := o.attempts[gatewayOrderID]
	if !ok || attempt.Checkout.Identity.UID != userID {
		return nil, ErrAttemptNotFound
	}
	if err := attempt.moveTo(StateAbandoned, o.now()); err != nil {
		return nil, err
	}
	return attempt.snapshot(), nil
}

// Lookup returns a copy of the attempt registered under gatewayOrderID.
func (o *Orchestrator) Lookup(gatewayOrderID string) (*Attempt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	attempt, ok := o.attempts[gatewayOrderID]
	if !ok {
		return nil, false
	}
	return attempt.snapshot(), true
}

func (o *Orchestrator) pruneLocked() {
	cutoff := o.now().Add(-o.ttl)
	for id, a := range o.attempts {
		if a.UpdatedAt.Before(cutoff) {
			delete(o.attempts, id)
		}
	}
}
