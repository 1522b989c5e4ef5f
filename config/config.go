package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/Clomora/utils"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	Port     string
	LogLevel string
	LogDir   string

	// Document store
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	MongoURI    string
	MongoDB     string
	// ProductSeedFile is a JSON array of products loaded into the memory store
	ProductSeedFile string

	// Cart storage and realtime bridge
	CartDriver    string
	CartTTL       time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Order events
	KafkaBrokers []string
	KafkaTopic   string

	// Auth
	JWTSecret     string
	SessionSecret string

	// Payment gateway
	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	// Pricing
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal

	// Notifications
	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppAPIBase string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string

	AllowedOrigins []string
	BrandName      string
}

// LoadConfig loads configuration from the .env file (if present) and environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", utils.DefaultPort),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   os.Getenv("LOG_DIR"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "clomora"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "clomora"),

		ProductSeedFile: os.Getenv("PRODUCT_SEED_FILE"),

		CartDriver:    strings.ToLower(getEnv("CART_DRIVER", DriverRedis)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "orders.placed"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          getEnv("CURRENCY", utils.DefaultCurrency),

		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneID: os.Getenv("WHATSAPP_PHONE_ID"),
		WhatsAppAPIBase: getEnv("WHATSAPP_API_BASE", "https://graph.facebook.com/v19.0"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		BrandName:      getEnv("BRAND_NAME", "Clomora"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = time.ParseDuration(getEnv("CART_TTL", "720h")); err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}
	if cfg.FreeShippingThreshold, err = decimal.NewFromString(getEnv("FREE_SHIPPING_THRESHOLD", utils.DefaultFreeShippingThreshold)); err != nil {
		return nil, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD: %w", err)
	}
	if cfg.FlatShippingFee, err = decimal.NewFromString(getEnv("FLAT_SHIPPING_FEE", utils.DefaultFlatShippingFee)); err != nil {
		return nil, fmt.Errorf("invalid FLAT_SHIPPING_FEE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected drivers are known and secrets are present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.CartDriver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown CART_DRIVER %q", c.CartDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.FreeShippingThreshold.IsNegative() || c.FlatShippingFee.IsNegative() {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PostgresDSN builds the gorm postgres connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
