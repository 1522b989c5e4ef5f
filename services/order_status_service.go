package services

import (
	"context"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
)

// OrderStatusService moves orders through the admin fulfillment workflow.
// Any admin status may follow any other.
type OrderStatusService struct {
	orders repository.OrderRepository
	broker realtime.Publisher
	now    func() time.Time
}

func NewOrderStatusService(orders repository.OrderRepository, broker realtime.Publisher) *OrderStatusService {
	return &OrderStatusService{orders: orders, broker: broker, now: time.Now}
}

// UpdateStatus sets the order's status and stamps updatedAt. deliveredAt is
// stamped when the order moves into delivered and is never cleared.
func (s *OrderStatusService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next, ok := models.ParseAdminStatus(status)
	if !ok {
		return nil, utils.ValidationFailed(utils.ErrInvalidStatus, []utils.FieldValidationError{
			{Field: "status", Message: "must be one of pending, packed, shipped, delivered, cancelled"},
		})
	}

	current, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrOrderNotFound, "Failed to load order")
	}

	now := s.now()
	upd := repository.StatusUpdate{Status: next, UpdatedAt: now}
	// Re-sending delivered for a delivered order keeps the first stamp.
	if next == models.OrderStatusDelivered && current.Status != models.OrderStatusDelivered {
		upd.DeliveredAt = &now
	}

	order, err := s.orders.UpdateStatus(ctx, orderID, upd)
	if err != nil {
		return nil, notFoundOr(err, utils.ErrOrderNotFound, "Failed to update order status")
	}
	utils.LogInfo("Order %s status changed from %s to %s", orderID, current.Status, next)

	publish(ctx, s.broker, realtime.Change{
		Collection: realtime.CollectionOrders,
		Scope:      order.UserID,
		DocumentID: order.ID,
		Kind:       realtime.ChangeUpdated,
	})
	return order, nil
}
