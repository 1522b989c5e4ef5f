package controllers

import (
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// CheckoutController runs the signed-in checkout: online payment through
// the gateway or cash on delivery.
type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// CheckoutRequest selects the shipping address.
type CheckoutRequest struct {
	AddressID string `json:"addressId"`
}

// VerifyPaymentRequest is what the hosted payment UI hands back.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// AbandonPaymentRequest names the gateway order the customer walked away from.
type AbandonPaymentRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id" binding:"required"`
}

// GetCheckoutSummary returns the priced cart and the saved addresses.
func (ctl *CheckoutController) GetCheckoutSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := ctl.checkout.Summary(c.Request.Context(), user, services.UserCartKey(user.UID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Checkout summary", summary)
}

// InitiatePayment creates the gateway order for the current cart.
func (ctl *CheckoutController) InitiatePayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	init, err := ctl.checkout.InitiateOnline(c.Request.Context(), user, services.UserCartKey(user.UID), req.AddressID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgPaymentInitiated, init)
}

// VerifyPayment checks the gateway signature and records the order.
func (ctl *CheckoutController) VerifyPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.checkout.ConfirmOnline(c.Request.Context(), user, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, utils.MsgPaymentSuccessful, gin.H{"order": order})
}

// AbandonPayment records that the payment UI was dismissed.
func (ctl *CheckoutController) AbandonPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req AbandonPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctl.checkout.Abandon(c.Request.Context(), user, req.RazorpayOrderID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgPaymentAbandoned, nil)
}

// PlaceCODOrder records a cash-on-delivery order.
func (ctl *CheckoutController) PlaceCODOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.checkout.PlaceCOD(c.Request.Context(), user, services.UserCartKey(user.UID), req.AddressID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, utils.MsgCODOrderPlaced, gin.H{"order": order})
}
