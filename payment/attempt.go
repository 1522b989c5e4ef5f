package payment

import (
	"fmt"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
)

// State is the lifecycle position of an online payment attempt.
type State string

const (
	StateIdle                 State = "IDLE"
	StateCreatingGatewayOrder State = "CREATING_GATEWAY_ORDER"
	StateAwaitingUserPayment  State = "AWAITING_USER_PAYMENT"
	StateVerifying            State = "VERIFYING"
	StateConfirmed            State = "CONFIRMED"
	StateRejected             State = "REJECTED"
	StateAbandoned            State = "ABANDONED"
)

var transitions = map[State][]State{
	StateIdle:                 {StateCreatingGatewayOrder},
	StateCreatingGatewayOrder: {StateAwaitingUserPayment},
	StateAwaitingUserPayment:  {StateVerifying, StateAbandoned},
	StateVerifying:            {StateConfirmed, StateRejected},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Checkout is what the customer is paying for, frozen when the attempt begins
// so the recorded order matches the charged amount.
type Checkout struct {
	Identity models.Identity
	CartKey  string
	Lines    []models.CartLine
	Address  models.Address
	Totals   models.Totals
}

// Attempt is one online payment. It lives only in memory.
type Attempt struct {
	ID           string
	State        State
	Amount       decimal.Decimal
	GatewayOrder *models.GatewayOrder
	PaymentID    string
	Signature    string
	Checkout     Checkout
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Attempt) moveTo(to State, now time.Time) error {
	if !CanTransition(a.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, to)
	}
	a.State = to
	a.UpdatedAt = now
	return nil
}

// GatewayOrderID returns the provider order id, if one was created.
func (a *Attempt) GatewayOrderID() string {
	if a.GatewayOrder == nil {
		return ""
	}
	return a.GatewayOrder.ID
}

// Outcome converts a confirmed attempt into the order writer's payment fields.
func (a *Attempt) Outcome() models.PaymentOutcome {
	return models.OnlinePayment(a.GatewayOrderID(), a.PaymentID, a.Signature)
}

func (a *Attempt) snapshot() *Attempt {
	cp := *a
	if a.GatewayOrder != nil {
		g := *a.GatewayOrder
		cp.GatewayOrder = &g
	}
	cp.Checkout.Lines = append([]models.CartLine(nil), a.Checkout.Lines...)
	return &cp
}
