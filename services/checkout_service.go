package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Govind-619/Clomora/metrics"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/payment"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
)

// CheckoutSummary is what the checkout page renders before payment.
type CheckoutSummary struct {
	Cart             *CartView        `json:"cart"`
	Addresses        []models.Address `json:"addresses"`
	DefaultAddressID string           `json:"defaultAddressId,omitempty"`
}

// Prefill seeds the hosted payment form.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// PaymentInitiation is returned to the client to open the hosted payment UI.
type PaymentInitiation struct {
	AttemptID    string               `json:"attemptId"`
	KeyID        string               `json:"keyId"`
	GatewayOrder *models.GatewayOrder `json:"gatewayOrder"`
	Totals       models.Totals        `json:"totals"`
	Prefill      Prefill              `json:"prefill"`
}

// CheckoutService runs both checkout paths: online through the payment
// orchestrator and cash on delivery straight to the order writer.
type CheckoutService struct {
	carts        *CartService
	addresses    repository.AddressRepository
	orchestrator *payment.Orchestrator
	writer       *OrderWriter
	metrics      *metrics.Metrics
	keyID        string
}

func NewCheckoutService(carts *CartService, addresses repository.AddressRepository, orchestrator *payment.Orchestrator, writer *OrderWriter, m *metrics.Metrics, keyID string) *CheckoutService {
	return &CheckoutService{
		carts:        carts,
		addresses:    addresses,
		orchestrator: orchestrator,
		writer:       writer,
		metrics:      m,
		keyID:        keyID,
	}
}

// Summary returns the priced cart and the customer's addresses.
func (s *CheckoutService) Summary(ctx context.Context, id models.Identity, cartKey string) (*CheckoutSummary, error) {
	if err := requireUser(id.UID); err != nil {
		return nil, err
	}
	view, err := s.carts.View(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	list, err := s.addresses.ListByUser(ctx, id.UID)
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load addresses", err)
	}
	models.SortAddresses(list)

	summary := &CheckoutSummary{Cart: view, Addresses: list}
	if len(list) > 0 && list[0].IsDefault {
		summary.DefaultAddressID = list[0].ID
	}
	return summary, nil
}

// InitiateOnline freezes the cart and address and creates the gateway order
// for subtotal plus shipping.
func (s *CheckoutService) InitiateOnline(ctx context.Context, id models.Identity, cartKey, addressID string) (*PaymentInitiation, error) {
	checkout, err := s.prepare(ctx, id, cartKey, addressID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.orchestrator.Begin(ctx, *checkout, gatewayAmount(checkout.Totals))
	if err != nil {
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			s.metrics.CheckoutOutcome(string(models.PaymentMethodRazorpay), metrics.OutcomeGatewayUnavailable)
			return nil, utils.GatewayUnavailableError(utils.ErrGatewayUnavailable, err)
		}
		return nil, utils.BadRequestError(err.Error(), err)
	}
	s.metrics.CheckoutOutcome(string(models.PaymentMethodRazorpay), metrics.OutcomeGatewayOrderCreated)

	return &PaymentInitiation{
		AttemptID:    attempt.ID,
		KeyID:        s.keyID,
		GatewayOrder: attempt.GatewayOrder,
		Totals:       checkout.Totals,
		Prefill: Prefill{
			Name:    checkout.Address.FullName,
			Email:   firstNonEmpty(checkout.Address.Email, id.Email),
			Contact: checkout.Address.Phone,
		},
	}, nil
}

// ConfirmOnline verifies the gateway signature and records the order for
// the lines frozen at initiation. Only those lines leave the cart. A
// rejected signature writes nothing and leaves the cart as it was.
func (s *CheckoutService) ConfirmOnline(ctx context.Context, id models.Identity, gatewayOrderID, paymentID, signature string) (*models.Order, error) {
	if err := requireUser(id.UID); err != nil {
		return nil, err
	}

	attempt, err := s.orchestrator.Verify(id.UID, gatewayOrderID, paymentID, signature)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrVerificationFailed):
			s.metrics.CheckoutOutcome(string(models.PaymentMethodRazorpay), metrics.OutcomeRejected)
			return nil, utils.GatewayRejectedError(utils.ErrVerificationFailed, err)
		case errors.Is(err, payment.ErrAttemptNotFound):
			return nil, utils.NotFoundError(utils.ErrPaymentAttemptAbsent, err)
		default:
			return nil, utils.BadRequestError(err.Error(), err)
		}
	}
	s.metrics.CheckoutOutcome(string(models.PaymentMethodRazorpay), metrics.OutcomeConfirmed)

	return s.writer.PlaceOrder(ctx, PlaceOrderInput{
		Identity: attempt.Checkout.Identity,
		Lines:    attempt.Checkout.Lines,
		Address:  attempt.Checkout.Address,
		Outcome:  attempt.Outcome(),
		CartKey:  attempt.Checkout.CartKey,
	})
}

// Abandon records that the customer closed the payment UI. Nothing is
// written and the cart is untouched. An unknown attempt is ignored.
func (s *CheckoutService) Abandon(ctx context.Context, id models.Identity, gatewayOrderID string) error {
	if err := requireUser(id.UID); err != nil {
		return err
	}
	if _, err := s.orchestrator.Abandon(id.UID, gatewayOrderID); err != nil {
		if errors.Is(err, payment.ErrAttemptNotFound) {
			utils.LogWarn("Abandon for unknown gateway order %s by user %s", gatewayOrderID, id.UID)
			return nil
		}
		return utils.BadRequestError(err.Error(), err)
	}
	s.metrics.CheckoutOutcome(string(models.PaymentMethodRazorpay), metrics.OutcomeAbandoned)
	utils.LogInfo("Payment for gateway order %s abandoned by user %s", gatewayOrderID, id.UID)
	return nil
}

// PlaceCOD records a cash-on-delivery order for the current cart.
func (s *CheckoutService) PlaceCOD(ctx context.Context, id models.Identity, cartKey, addressID string) (*models.Order, error) {
	checkout, err := s.prepare(ctx, id, cartKey, addressID)
	if err != nil {
		return nil, err
	}
	order, err := s.writer.PlaceOrder(ctx, PlaceOrderInput{
		Identity: id,
		Lines:    checkout.Lines,
		Address:  checkout.Address,
		Outcome:  models.CashOnDelivery(),
		CartKey:  cartKey,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.CheckoutOutcome(string(models.PaymentMethodCOD), metrics.OutcomeCODPlaced)
	return order, nil
}

// prepare loads the priced cart and the chosen address.
func (s *CheckoutService) prepare(ctx context.Context, id models.Identity, cartKey, addressID string) (*payment.Checkout, error) {
	if err := requireUser(id.UID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(addressID) == "" {
		return nil, utils.ValidationFailed(utils.ErrSelectAddress, []utils.FieldValidationError{
			{Field: "addressId", Message: "is required"},
		})
	}

	store, err := s.carts.Open(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	lines, err := s.carts.PricedLines(ctx, store.Lines())
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, utils.ValidationFailed(utils.ErrCartEmpty, nil)
	}

	addr, err := s.addresses.Get(ctx, id.UID, addressID)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrAddressNotFound, "Failed to load address")
	}

	return &payment.Checkout{
		Identity: id,
		CartKey:  cartKey,
		Lines:    lines,
		Address:  *addr,
		Totals:   s.carts.Quote(lines),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
