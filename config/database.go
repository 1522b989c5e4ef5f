package config

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the postgres connection
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate auto-migrates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Address{},
		&models.Product{},
		&models.Order{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Enforce a single default address per user at the database level too.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_one_default
		ON addresses (user_id) WHERE is_default`).Error; err != nil {
		return fmt.Errorf("failed to create default address index: %w", err)
	}
	return nil
}

// ConnectRedis opens and pings the redis client
func ConnectRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
