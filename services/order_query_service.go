package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
	"github.com/shopspring/decimal"
)

// recentOrdersLimit is how many orders the dashboard lists.
const recentOrdersLimit = 10

// DashboardStats summarizes every order for the admin dashboard.
type DashboardStats struct {
	TotalOrders     int             `json:"totalOrders"`
	PendingOrders   int             `json:"pendingOrders"`
	DeliveredOrders int             `json:"deliveredOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TodaySales      decimal.Decimal `json:"todaySales"`
	TodayOrders     int             `json:"todayOrders"`
	RecentOrders    []models.Order  `json:"recentOrders"`
}

// PaymentRecord is the payment side of one order.
type PaymentRecord struct {
	OrderID           string               `json:"orderId"`
	UserID            string               `json:"userId"`
	UserEmail         string               `json:"userEmail,omitempty"`
	Amount            decimal.Decimal      `json:"amount"`
	Currency          string               `json:"currency"`
	Method            models.PaymentMethod `json:"method"`
	Status            models.PaymentStatus `json:"status"`
	RazorpayOrderID   string               `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string               `json:"razorpayPaymentId,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
}

// PaymentFilter narrows the payments view. Search matches the order id or
// the gateway payment id.
type PaymentFilter struct {
	Status models.PaymentStatus
	Search string
}

// PaymentSummary counts the payments in a listing.
type PaymentSummary struct {
	Count       int             `json:"count"`
	Completed   int             `json:"completed"`
	Failed      int             `json:"failed"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// OrderQueryService reads orders for customers and admins.
type OrderQueryService struct {
	orders   repository.OrderRepository
	broker   realtime.Subscriber
	currency string
	now      func() time.Time
}

func NewOrderQueryService(orders repository.OrderRepository, broker realtime.Subscriber, currency string) *OrderQueryService {
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	return &OrderQueryService{orders: orders, broker: broker, currency: currency, now: time.Now}
}

// ListUserOrders returns the customer's orders, newest first.
func (s *OrderQueryService) ListUserOrders(ctx context.Context, uid string) ([]models.Order, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, uid)
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load orders", err)
	}
	return orders, nil
}

// GetUserOrder returns one order if it belongs to uid. Someone else's
// order reads as not found.
func (s *OrderQueryService) GetUserOrder(ctx context.Context, uid, id string) (*models.Order, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != uid {
		return nil, utils.NotFoundError(utils.ErrOrderNotFound, nil)
	}
	return order, nil
}

// GetOrder returns any order.
func (s *OrderQueryService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrOrderNotFound, "Failed to load order")
	}
	return order, nil
}

// ListOrders returns every order matching filter, newest first.
func (s *OrderQueryService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load orders", err)
	}
	return orders, nil
}

// Dashboard computes the admin statistics. Today starts at local midnight.
func (s *OrderQueryService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.ListOrders(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		TodaySales:   decimal.Zero,
	}
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusDelivered:
			stats.DeliveredOrders++
		}
		if o.PaymentStatus == models.PaymentStatusCompleted {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		}
		if !o.CreatedAt.Before(todayStart) {
			stats.TodayOrders++
			stats.TodaySales = stats.TodaySales.Add(o.Total)
		}
	}

	n := len(orders)
	if n > recentOrdersLimit {
		n = recentOrdersLimit
	}
	stats.RecentOrders = orders[:n]
	return stats, nil
}

// Payments lists the payment side of every order matching filter.
func (s *OrderQueryService) Payments(ctx context.Context, filter PaymentFilter) ([]PaymentRecord, PaymentSummary, error) {
	summary := PaymentSummary{TotalAmount: decimal.Zero}
	orders, err := s.ListOrders(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, summary, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	records := make([]PaymentRecord, 0, len(orders))
	for _, o := range orders {
		if filter.Status != "" && o.PaymentStatus != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.RazorpayPaymentID), search) {
			continue
		}
		records = append(records, PaymentRecord{
			OrderID:           o.ID,
			UserID:            o.UserID,
			UserEmail:         o.UserEmail,
			Amount:            o.Total,
			Currency:          s.currency,
			Method:            o.PaymentMethod,
			Status:            o.PaymentStatus,
			RazorpayOrderID:   o.RazorpayOrderID,
			RazorpayPaymentID: o.RazorpayPaymentID,
			CreatedAt:         o.CreatedAt,
		})

		summary.Count++
		summary.TotalAmount = summary.TotalAmount.Add(o.Total)
		switch o.PaymentStatus {
		case models.PaymentStatusCompleted:
			summary.Completed++
		case models.PaymentStatusFailed:
			summary.Failed++
		}
	}
	return records, summary, nil
}

// WatchOrders delivers the filtered order list now and again after every
// order change. A filter with a UserID only reacts to that user's orders.
// Calls to onChange are serialized.
func (s *OrderQueryService) WatchOrders(ctx context.Context, filter repository.OrderFilter, onChange func([]models.Order)) (func(), error) {
	var mu sync.Mutex
	emit := func(ctx context.Context) error {
		orders, err := s.ListOrders(ctx, filter)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		onChange(orders)
		return nil
	}

	q := realtime.Query{Collection: realtime.CollectionOrders, Scope: filter.UserID}
	unsubscribe := s.broker.Subscribe(q, func(realtime.Change) {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emit(rctx); err != nil {
			utils.LogError("Failed to refresh order stream: %v", err)
		}
	})
	if err := emit(ctx); err != nil {
		unsubscribe()
		return nil, err
	}
	return unsubscribe, nil
}
