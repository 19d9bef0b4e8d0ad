package main

import (
	"context"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/config"
	"github.com/ariefcatur/go-restaurant-pos/internal/logging"
	"github.com/ariefcatur/go-restaurant-pos/internal/postgres"
	"github.com/ariefcatur/go-restaurant-pos/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.ServiceName+"-seed")
	defer func() { _ = logger.Sync() }()
	if cfg.PostgresDSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	d := seed.Default()
	if err := postgres.Seed(ctx, db, d); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	logger.Info("seed complete",
		zap.Int("users", len(d.Users)), zap.Int("tables", len(d.Tables)), zap.Int("products", len(d.Products)))
}
