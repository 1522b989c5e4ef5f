package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/Clomora/cart"
	"github.com/Govind-619/Clomora/config"
	"github.com/Govind-619/Clomora/controllers"
	"github.com/Govind-619/Clomora/metrics"
	"github.com/Govind-619/Clomora/notification"
	"github.com/Govind-619/Clomora/payment"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/reports"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/routes"
	"github.com/Govind-619/Clomora/services"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// setup loads configuration and starts the logger.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := utils.InitLogger(utils.LogOptions{Env: cfg.Env, Level: cfg.LogLevel, Dir: cfg.LogDir}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// openStore connects the configured document store and returns the health
// probe for it.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, controllers.HealthCheck, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		probe := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return repository.NewGormStore(db), probe, nil

	case config.DriverMongo:
		db, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			utils.LogWarn("Failed to ensure mongo indexes: %v", err)
		}
		probe := func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}
		return repository.NewMongoStore(db), probe, nil
	}

	utils.LogWarn("Using the in-memory store; data is lost on restart")
	store, products := repository.NewMemoryStore()
	if cfg.ProductSeedFile != "" {
		file, err := os.Open(cfg.ProductSeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening product seed: %w", err)
		}
		defer file.Close()
		n, err := products.Load(file)
		if err != nil {
			return nil, nil, err
		}
		utils.LogInfo("Seeded %d products from %s", n, cfg.ProductSeedFile)
	}
	return store, func(context.Context) error { return nil }, nil
}

func buildNotifier(cfg *config.Config) (notification.Notifier, *notification.WhatsApp, func()) {
	var (
		channels notification.Multi
		whatsapp *notification.WhatsApp
		closers  []func()
	)
	if cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != "" {
		whatsapp = notification.NewWhatsApp(cfg.WhatsAppAPIBase, cfg.WhatsAppPhoneID, cfg.WhatsAppToken)
		channels = append(channels, whatsapp)
	} else {
		utils.LogWarn("WhatsApp notifications disabled: WHATSAPP_TOKEN or WHATSAPP_PHONE_ID not set")
	}
	if cfg.SMTPHost != "" {
		channels = append(channels, notification.NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.BrandName))
	}
	if len(cfg.KafkaBrokers) > 0 {
		k := notification.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		channels = append(channels, k)
		closers = append(closers, func() {
			if err := k.Close(); err != nil {
				utils.LogError("Failed to close kafka writer: %v", err)
			}
		})
	}
	return channels, whatsapp, func() {
		for _, c := range closers {
			c()
		}
	}
}

func serve(parent context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, storeProbe, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			utils.LogError("Failed to close store: %v", err)
		}
	}()
	checks := map[string]controllers.HealthCheck{"store": storeProbe}

	// Redis backs carts and fans realtime changes out across instances.
	hub := realtime.NewHub()
	var broker realtime.Broker = hub
	var cartStorage cart.Storage = cart.NewMemoryStorage()
	if cfg.CartDriver == config.DriverRedis {
		client, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		cartStorage = cart.NewRedisStorage(client, cfg.CartTTL)
		bridge := realtime.NewRedisBridge(hub, redis.UniversalClient(client), realtime.DefaultChannel)
		broker = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				utils.LogError("Realtime bridge stopped: %v", err)
			}
		}()
	} else {
		utils.LogWarn("Using in-memory cart storage")
	}

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		utils.LogWarn("RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET not set; online payments will fail")
	}
	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency)
	orchestrator := payment.NewOrchestrator(gateway, cfg.RazorpayKeySecret)

	notifier, whatsapp, closeNotifiers := buildNotifier(cfg)
	defer closeNotifiers()
	var whatsAppNotifier notification.Notifier = notification.Nop{}
	if whatsapp != nil {
		whatsAppNotifier = whatsapp
	}

	m := metrics.New()
	pricing := services.Pricing{FreeShippingThreshold: cfg.FreeShippingThreshold, FlatShippingFee: cfg.FlatShippingFee}
	brand := reports.DefaultBrand(cfg.BrandName)

	addressService := services.NewAddressService(store.Addresses, broker)
	cartService := services.NewCartService(cartStorage, store.Products, broker, pricing)
	writer := services.NewOrderWriter(store.Orders, cartService, notifier, broker, m, pricing)
	checkoutService := services.NewCheckoutService(cartService, store.Addresses, orchestrator, writer, m, cfg.RazorpayKeyID)
	statusService := services.NewOrderStatusService(store.Orders, broker)
	queryService := services.NewOrderQueryService(store.Orders, broker, cfg.Currency)

	router := routes.SetupRouter(routes.Handlers{
		Address:    controllers.NewAddressController(addressService),
		Cart:       controllers.NewCartController(cartService),
		Checkout:   controllers.NewCheckoutController(checkoutService),
		Payment:    controllers.NewPaymentController(orchestrator, whatsAppNotifier),
		Order:      controllers.NewOrderController(queryService, brand),
		AdminOrder: controllers.NewAdminOrderController(queryService, statusService, brand),
		Stream:     controllers.NewStreamController(addressService, queryService, m, cfg.AllowedOrigins),
		Health:     controllers.NewHealthController(checks),
	}, routes.Options{
		JWTSecret:      cfg.JWTSecret,
		SessionSecret:  sessionSecret(cfg),
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
		Metrics:        m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting on port %s (store=%s, cart=%s)", cfg.Port, cfg.StoreDriver, cfg.CartDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func sessionSecret(cfg *config.Config) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	utils.LogWarn("SESSION_SECRET not set; deriving the session key from JWT_SECRET")
	return cfg.JWTSecret
}

func migrate(parent context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
	case config.DriverMongo:
		db, err := repository.ConnectMongo(parent, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(context.Background())
		if err := repository.EnsureMongoIndexes(parent, db); err != nil {
			return err
		}
	default:
		utils.LogInfo("Store driver %s needs no migration", cfg.StoreDriver)
		return nil
	}
	utils.LogInfo("Migration completed for %s", cfg.StoreDriver)
	return nil
}
