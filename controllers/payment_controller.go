package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/notification"
	"github.com/Govind-619/Clomora/payment"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentController keeps the storefront's original payment endpoints.
// Their bodies are plain JSON, not the standard envelope.
type PaymentController struct {
	orchestrator *payment.Orchestrator
	whatsapp     notification.Notifier
	now          func() time.Time
	async        func(func())
}

func NewPaymentController(orchestrator *payment.Orchestrator, whatsapp notification.Notifier) *PaymentController {
	if whatsapp == nil {
		whatsapp = notification.Nop{}
	}
	return &PaymentController{
		orchestrator: orchestrator,
		whatsapp:     whatsapp,
		now:          time.Now,
		async:        func(fn func()) { go fn() },
	}
}

type createOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// draftItem accepts every item shape the storefront has sent over time.
type draftItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Size          string          `json:"size"`
	SelectedSize  string          `json:"selectedSize"`
	Color         string          `json:"color"`
	SelectedColor string          `json:"selectedColor"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Image         string          `json:"image"`
	ImageURL      string          `json:"imageUrl"`
	Thumbnail     string          `json:"thumbnail"`
	Product       *struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Image     string          `json:"image"`
		Images    []string        `json:"images"`
		ImageURLs []string        `json:"imageUrls"`
	} `json:"product"`
}

func (it draftItem) toOrderItem() models.OrderItem {
	out := models.OrderItem{
		ProductID: firstOf(it.ID, it.ProductID),
		Name:      firstOf(it.Name, it.Title),
		Size:      firstOf(it.SelectedSize, it.Size),
		Color:     firstOf(it.SelectedColor, it.Color),
		Price:     it.Price,
		Quantity:  it.Quantity,
		Image:     firstOf(it.Image, it.ImageURL, it.Thumbnail),
	}
	if p := it.Product; p != nil {
		out.ProductID = firstOf(out.ProductID, p.ID)
		out.Name = firstOf(out.Name, p.Name)
		if out.Price.IsZero() {
			out.Price = p.Price
		}
		if out.Image == "" {
			out.Image = firstOf(append([]string{p.Image}, models.NormalizeImages(p.ImageURLs, p.Images, "")...)...)
		}
	}
	return out
}

type codDraftRequest struct {
	Cart    []draftItem            `json:"cart"`
	Items   []draftItem            `json:"items"`
	Address map[string]interface{} `json:"address"`
	Total   decimal.Decimal        `json:"total"`
}

type whatsAppRequest struct {
	Phone string          `json:"phone"`
	Name  string          `json:"name"`
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}

// CreateOrder creates a bare gateway order for amount in major units.
func (ctl *PaymentController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}

	order, err := ctl.orchestrator.CreateGatewayOrder(c.Request.Context(), req.Amount)
	if err != nil {
		utils.LogError("Create order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Order creation failed", "error": err.Error()})
		return
	}
	utils.LogInfo("Gateway order created: %s", order.ID)
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// VerifyPayment reports whether the signature matches; it writes nothing.
func (ctl *PaymentController) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	ok := ctl.orchestrator.VerifyPayment(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if !ok {
		utils.LogWarn("Signature mismatch for gateway order %s", req.RazorpayOrderID)
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// CreateCODOrder normalizes a client-side COD order draft and echoes it.
// Persisting happens through the authenticated checkout.
func (ctl *PaymentController) CreateCODOrder(c *gin.Context) {
	var req codDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("COD order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	source := req.Items
	if len(source) == 0 {
		source = req.Cart
	}
	items := make([]models.OrderItem, 0, len(source))
	for _, it := range source {
		items = append(items, it.toOrderItem())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"items":         items,
			"address":       req.Address,
			"total":         req.Total,
			"paymentMethod": models.PaymentMethodCOD,
			"paymentStatus": models.PaymentStatusPending,
			"createdAt":     ctl.now(),
		},
	})
}

// ConfirmOrderWhatsApp sends the confirmation message in the background and
// always reports success.
func (ctl *PaymentController) ConfirmOrderWhatsApp(c *gin.Context) {
	var req whatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("WhatsApp route error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	notice := notification.OrderNotice{OrderID: req.ID, Name: req.Name, Phone: req.Phone, Total: req.Total}
	ctl.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := ctl.whatsapp.NotifyOrderPlaced(ctx, notice); err != nil {
			utils.LogError("WhatsApp message for order %s failed: %v", req.ID, err)
		}
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
