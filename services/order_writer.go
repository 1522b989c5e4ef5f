package services

import (
	"context"
	"time"

	"github.com/Govind-619/Clomora/metrics"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/notification"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
)

// NotifyTimeout bounds one order-placed notification fan-out.
const NotifyTimeout = 15 * time.Second

// PlaceOrderInput is everything the writer needs to record an order.
type PlaceOrderInput struct {
	Identity models.Identity
	Lines    []models.CartLine
	Address  models.Address
	Outcome  models.PaymentOutcome
	// CartKey names the cart the lines came from. After the order is saved
	// exactly these lines are removed from it. Empty skips the cleanup.
	CartKey string
}

// OrderWriter turns a paid or COD checkout into a persisted order.
type OrderWriter struct {
	orders   repository.OrderRepository
	notifier notification.Notifier
	broker   realtime.Publisher
	metrics  *metrics.Metrics
	pricing  Pricing
	carts    *CartService
	now      func() time.Time
	newID    func() string
	async    func(func())
}

func NewOrderWriter(orders repository.OrderRepository, carts *CartService, notifier notification.Notifier, broker realtime.Publisher, m *metrics.Metrics, pricing Pricing) *OrderWriter {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &OrderWriter{
		orders:   orders,
		notifier: notifier,
		broker:   broker,
		metrics:  m,
		pricing:  pricing,
		carts:    carts,
		now:      time.Now,
		newID:    newID,
		async:    func(fn func()) { go fn() },
	}
}

// PlaceOrder snapshots the lines, saves the order, sends the confirmation
// in the background and removes the ordered lines from the cart. Once the
// order is saved, a failing notification or cart cleanup does not fail the call.
func (w *OrderWriter) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := requireUser(in.Identity.UID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, utils.ValidationFailed(utils.ErrCartEmpty, nil)
	}

	order := w.build(in)
	if err := w.orders.Create(ctx, order); err != nil {
		w.metrics.CheckoutOutcome(string(order.PaymentMethod), metrics.OutcomePersistenceFailure)
		if in.Outcome.Method == models.PaymentMethodRazorpay {
			utils.LogError("Paid order not saved for user %s: razorpay_order_id=%s razorpay_payment_id=%s: %v",
				in.Identity.UID, in.Outcome.RazorpayOrderID, in.Outcome.RazorpayPaymentID, err)
			return nil, utils.PersistenceFailureError(utils.ErrPaidOrderSaveFailed, err)
		}
		utils.LogError("Order not saved for user %s: %v", in.Identity.UID, err)
		return nil, utils.PersistenceFailureError(utils.ErrOrderSaveFailed, err)
	}
	utils.LogInfo("Order %s placed by user %s (%s, total %s)", order.ID, order.UserID, order.PaymentMethod, order.Total)

	publish(ctx, w.broker, realtime.Change{
		Collection: realtime.CollectionOrders,
		Scope:      order.UserID,
		DocumentID: order.ID,
		Kind:       realtime.ChangeCreated,
	})

	w.notify(noticeFor(*order))

	if in.CartKey != "" && w.carts != nil {
		if err := w.carts.RemoveLines(ctx, in.CartKey, lineKeys(in.Lines)); err != nil {
			utils.LogError("Failed to clear cart %s after order %s: %v", in.CartKey, order.ID, err)
		}
	}
	return order, nil
}

func lineKeys(lines []models.CartLine) []models.CartKey {
	keys := make([]models.CartKey, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, l.Key())
	}
	return keys
}

func (w *OrderWriter) build(in PlaceOrderInput) *models.Order {
	items := make([]models.OrderItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Image:     l.Product.PrimaryImage(),
		})
	}
	totals := w.pricing.Quote(in.Lines)
	now := w.now()

	order := &models.Order{
		ID:                w.newID(),
		UserID:            in.Identity.UID,
		UserEmail:         in.Identity.Email,
		Items:             items,
		Subtotal:          totals.Subtotal,
		Shipping:          totals.Shipping,
		Tax:               totals.Tax,
		Total:             totals.Total,
		Status:            models.OrderStatusPlaced,
		PaymentMethod:     in.Outcome.Method,
		PaymentStatus:     in.Outcome.Status,
		RazorpayOrderID:   in.Outcome.RazorpayOrderID,
		RazorpayPaymentID: in.Outcome.RazorpayPaymentID,
		RazorpaySignature: in.Outcome.RazorpaySignature,
		PaymentID:         in.Outcome.RazorpayPaymentID,
		ShippingAddress:   models.ShippingAddressFrom(in.Address),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if order.UserEmail == "" {
		order.UserEmail = in.Address.Email
	}
	return order
}

// noticeFor builds the confirmation payload of a saved order.
func noticeFor(o models.Order) notification.OrderNotice {
	email := o.ShippingAddress.Email
	if email == "" {
		email = o.UserEmail
	}
	return notification.OrderNotice{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Name:          o.ShippingAddress.FullName,
		Phone:         o.ShippingAddress.Phone,
		Email:         email,
		Total:         o.Total,
		ItemCount:     o.ItemCount(),
		PaymentMethod: string(o.PaymentMethod),
	}
}

// notify sends n in the background. Failures are logged and counted.
func (w *OrderWriter) notify(n notification.OrderNotice) {
	w.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), NotifyTimeout)
		defer cancel()
		if err := w.notifier.NotifyOrderPlaced(ctx, n); err != nil {
			w.metrics.CheckoutOutcome(n.PaymentMethod, metrics.OutcomeNotificationFailed)
			utils.LogError("Order %s notification failed: %v", n.OrderID, err)
		}
	})
}
