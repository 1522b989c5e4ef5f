package routes

import (
	"net/http"
	"time"

	"github.com/Govind-619/Clomora/controllers"
	"github.com/Govind-619/Clomora/metrics"
	"github.com/Govind-619/Clomora/middleware"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Handlers are the controllers mounted on the router.
type Handlers struct {
	Address    *controllers.AddressController
	Cart       *controllers.CartController
	Checkout   *controllers.CheckoutController
	Payment    *controllers.PaymentController
	Order      *controllers.OrderController
	AdminOrder *controllers.AdminOrderController
	Stream     *controllers.StreamController
	Health     *controllers.HealthController
}

// Options carries the router-level settings.
type Options struct {
	JWTSecret      string
	SessionSecret  string
	AllowedOrigins []string
	SecureCookies  bool
	Metrics        *metrics.Metrics
}

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(opts.Metrics))
	}

	// Guest carts are keyed by a cookie session
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24 * 30,
		Path:     "/",
		Secure:   opts.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("clomora", store))

	router.GET("/health", h.Health.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Payment backend endpoints used by the storefront
	router.POST("/create-order", h.Payment.CreateOrder)
	router.POST("/verify-payment", h.Payment.VerifyPayment)
	router.POST("/create-cod-order", h.Payment.CreateCODOrder)
	router.POST("/confirm-order-whatsapp", h.Payment.ConfirmOrderWhatsApp)

	api := router.Group("/" + utils.APIVersion)
	{
		initUserRoutes(api, h, opts)
		initAdminRoutes(api, h, opts)
	}

	router.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Route not found")
	})
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		// Same-origin only
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
