package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

// Order status constants
const (
	OrderStatusPlaced    OrderStatus = "Order Placed"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AdminStatuses are the values an admin may assign.
var AdminStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseAdminStatus accepts one of AdminStatuses, case-insensitively.
func ParseAdminStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range AdminStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// ParseOrderStatus accepts any stored status, including the initial one.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderStatusPlaced)) {
		return OrderStatusPlaced, true
	}
	return ParseAdminStatus(s)
}

// Terminal reports whether no further fulfillment is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// ParsePaymentMethod normalizes legacy casings such as "Razorpay" or "COD".
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "razorpay", "online":
		return PaymentMethodRazorpay, true
	case "cod":
		return PaymentMethodCOD, true
	}
	return "", false
}

// PaymentStatus is the settlement state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ParsePaymentStatus normalizes legacy casings such as "PENDING".
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return PaymentStatusPending, true
	case "completed":
		return PaymentStatusCompleted, true
	case "failed":
		return PaymentStatusFailed, true
	}
	return "", false
}

// OrderItem is a denormalized product snapshot taken at checkout.
type OrderItem struct {
	ProductID string          `json:"productId" bson:"productId"`
	Name      string          `json:"name" bson:"name"`
	Price     decimal.Decimal `json:"price" bson:"price"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Size      string          `json:"size" bson:"size"`
	Color     string          `json:"color" bson:"color"`
	Image     string          `json:"image" bson:"image"`
}

// ShippingAddress is the address copied into an order.
type ShippingAddress struct {
	FullName     string `json:"fullName" bson:"fullName"`
	Phone        string `json:"phone" bson:"phone"`
	Email        string `json:"email,omitempty" bson:"email,omitempty"`
	AddressLine1 string `json:"addressLine1" bson:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	Pincode      string `json:"pincode" bson:"pincode"`
	Landmark     string `json:"landmark,omitempty" bson:"landmark,omitempty"`
}

// ShippingAddressFrom snapshots a saved address.
func ShippingAddressFrom(a Address) ShippingAddress {
	return ShippingAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		Email:        a.Email,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Landmark:     a.Landmark,
	}
}

// Order is immutable once written, except Status, UpdatedAt and DeliveredAt.
type Order struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	UserID            string          `json:"userId" gorm:"index;type:varchar(128)" bson:"userId"`
	UserEmail         string          `json:"userEmail" bson:"userEmail"`
	Items             []OrderItem     `json:"items" gorm:"serializer:json;type:jsonb" bson:"items"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)" bson:"subtotal"`
	Shipping          decimal.Decimal `json:"shipping" gorm:"type:numeric(12,2)" bson:"shipping"`
	Tax               decimal.Decimal `json:"tax" gorm:"type:numeric(12,2)" bson:"tax"`
	Total             decimal.Decimal `json:"total" gorm:"type:numeric(12,2)" bson:"total"`
	Status            OrderStatus     `json:"status" gorm:"index;type:varchar(32)" bson:"status"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(16)" bson:"paymentMethod"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(16)" bson:"paymentStatus"`
	PaymentID         string          `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	RazorpayOrderID   string          `json:"razorpayOrderId,omitempty" gorm:"index" bson:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string          `json:"razorpayPaymentId,omitempty" bson:"razorpayPaymentId,omitempty"`
	RazorpaySignature string          `json:"razorpaySignature,omitempty" bson:"razorpaySignature,omitempty"`
	ShippingAddress   ShippingAddress `json:"shippingAddress" gorm:"serializer:json;type:jsonb" bson:"shippingAddress"`
	CreatedAt         time.Time       `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
}

// ItemCount is the number of units across all items.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Normalize canonicalizes enum casings and rejects malformed documents.
func (o *Order) Normalize() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order: missing id")
	}
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("order %s: missing userId", o.ID)
	}
	status, ok := ParseOrderStatus(string(o.Status))
	if !ok {
		return fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	o.Status = status
	method, ok := ParsePaymentMethod(string(o.PaymentMethod))
	if !ok {
		return fmt.Errorf("order %s: unknown payment method %q", o.ID, o.PaymentMethod)
	}
	o.PaymentMethod = method
	pstatus, ok := ParsePaymentStatus(string(o.PaymentStatus))
	if !ok {
		return fmt.Errorf("order %s: unknown payment status %q", o.ID, o.PaymentStatus)
	}
	o.PaymentStatus = pstatus
	if len(o.Items) == 0 {
		return fmt.Errorf("order %s: no items", o.ID)
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("order %s: item %s has quantity %d", o.ID, it.ProductID, it.Quantity)
		}
	}
	if o.Total.IsNegative() {
		return fmt.Errorf("order %s: negative total", o.ID)
	}
	return nil
}
