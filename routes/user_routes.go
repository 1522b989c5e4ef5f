package routes

import (
	"github.com/Govind-619/Clomora/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes all customer-facing routes
func initUserRoutes(router *gin.RouterGroup, h Handlers, opts Options) {
	// Cart works for guests and signed-in users
	cart := router.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(opts.JWTSecret))
	{
		cart.GET("", h.Cart.GetCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items", h.Cart.UpdateCartItem)
		cart.DELETE("/items", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
	}

	user := router.Group("/user")
	user.Use(middleware.AuthMiddleware(opts.JWTSecret))
	{
		// Address management
		user.GET("/addresses", h.Address.GetAddresses)
		user.POST("/addresses", h.Address.AddAddress)
		user.GET("/addresses/stream", h.Stream.StreamAddresses)
		user.PUT("/addresses/:id", h.Address.UpdateAddress)
		user.DELETE("/addresses/:id", h.Address.DeleteAddress)
		user.PATCH("/addresses/:id/default", h.Address.SetDefaultAddress)

		// Checkout
		user.GET("/checkout/summary", h.Checkout.GetCheckoutSummary)
		user.POST("/checkout/payment/initiate", h.Checkout.InitiatePayment)
		user.POST("/checkout/payment/verify", h.Checkout.VerifyPayment)
		user.POST("/checkout/payment/abandon", h.Checkout.AbandonPayment)
		user.POST("/checkout/cod", h.Checkout.PlaceCODOrder)

		// Orders
		user.GET("/orders", h.Order.ListOrders)
		user.GET("/orders/stream", h.Stream.StreamOrders)
		user.GET("/orders/:id", h.Order.GetOrderDetails)
		user.GET("/orders/:id/invoice", h.Order.DownloadInvoice)
	}
}
