package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/reports"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// AdminOrderController serves the admin panel's orders, payments and
// dashboard.
type AdminOrderController struct {
	orders *services.OrderQueryService
	status *services.OrderStatusService
	brand  reports.Brand
}

func NewAdminOrderController(orders *services.OrderQueryService, status *services.OrderStatusService, brand reports.Brand) *AdminOrderController {
	return &AdminOrderController{orders: orders, status: status, brand: brand}
}

// UpdateOrderStatusRequest is the admin status change payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// orderFilter reads status and search from the query string. "all" or an
// empty status matches everything.
func orderFilter(c *gin.Context) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{
		UserID: strings.TrimSpace(c.Query("userId")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			utils.BadRequest(c, utils.ErrInvalidStatus, gin.H{"status": raw})
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}

// ListAllOrders lists every order matching the filters, newest first.
func (ctl *AdminOrderController) ListAllOrders(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	orders, err := ctl.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	p := utils.NewPagination(c)
	start, end := p.Window(len(orders))
	utils.SendPaginatedResponse(c, "Orders retrieved successfully", orders[start:end], p)
}

// GetOrderDetails returns any order.
func (ctl *AdminOrderController) GetOrderDetails(c *gin.Context) {
	order, err := ctl.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", gin.H{"order": order})
}

// UpdateOrderStatus moves an order to any admin status.
func (ctl *AdminOrderController) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := ctl.status.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgOrderStatusUpdated, gin.H{"order": order})
}

// GetDashboard returns the dashboard statistics.
func (ctl *AdminOrderController) GetDashboard(c *gin.Context) {
	stats, err := ctl.orders.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Dashboard statistics", stats)
}

// ListPayments lists the payment side of every order.
func (ctl *AdminOrderController) ListPayments(c *gin.Context) {
	filter := services.PaymentFilter{Search: c.Query("search")}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := models.ParsePaymentStatus(raw)
		if !ok {
			utils.BadRequest(c, utils.ErrInvalidStatus, gin.H{"status": raw})
			return
		}
		filter.Status = status
	}

	records, summary, err := ctl.orders.Payments(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	p := utils.NewPagination(c)
	start, end := p.Window(len(records))
	utils.Success(c, "Payments retrieved successfully", gin.H{
		"payments":   records[start:end],
		"summary":    summary,
		"pagination": p,
	})
}

// ExportOrders downloads the filtered orders as an XLSX sheet.
func (ctl *AdminOrderController) ExportOrders(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	orders, err := ctl.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := reports.WriteOrdersXLSX(&buf, ctl.brand, orders, now); err != nil {
		utils.LogError("Failed to write orders export: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}
	utils.LogInfo("Exported %d orders", len(orders))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orders_%s.xlsx", now.Format("20060102_1504")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
