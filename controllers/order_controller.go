package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Govind-619/Clomora/reports"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// OrderController serves a customer's own orders.
type OrderController struct {
	orders *services.OrderQueryService
	brand  reports.Brand
}

func NewOrderController(orders *services.OrderQueryService, brand reports.Brand) *OrderController {
	return &OrderController{orders: orders, brand: brand}
}

// ListOrders returns the user's orders, newest first, one page at a time.
func (ctl *OrderController) ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orders, err := ctl.orders.ListUserOrders(c.Request.Context(), user.UID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	p := utils.NewPagination(c)
	start, end := p.Window(len(orders))
	utils.SendPaginatedResponse(c, "Orders retrieved successfully", orders[start:end], p)
}

// GetOrderDetails returns one of the user's orders.
func (ctl *OrderController) GetOrderDetails(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := ctl.orders.GetUserOrder(c.Request.Context(), user.UID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", gin.H{"order": order})
}

// DownloadInvoice renders the order as a PDF invoice.
func (ctl *OrderController) DownloadInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := ctl.orders.GetUserOrder(c.Request.Context(), user.UID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteInvoice(&buf, ctl.brand, *order); err != nil {
		utils.LogError("Failed to render invoice for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate invoice", nil)
		return
	}
	utils.LogInfo("Invoice generated for order %s", order.ID)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
