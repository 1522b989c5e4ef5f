package routes

import (
	"github.com/Govind-619/Clomora/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup, h Handlers, opts Options) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(opts.JWTSecret), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", h.AdminOrder.GetDashboard)

		// Order management
		admin.GET("/orders", h.AdminOrder.ListAllOrders)
		admin.GET("/orders/stream", h.Stream.StreamAllOrders)
		admin.GET("/orders/export", h.AdminOrder.ExportOrders)
		admin.GET("/orders/:id", h.AdminOrder.GetOrderDetails)
		admin.PATCH("/orders/:id/status", h.AdminOrder.UpdateOrderStatus)

		// Payments
		admin.GET("/payments", h.AdminOrder.ListPayments)
	}
}
