package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-restaurant-pos/internal/config"
	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/logging"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/ariefcatur/go-restaurant-pos/internal/printing"
	"github.com/ariefcatur/go-restaurant-pos/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.ServiceName+"-printer")
	defer func() { _ = logger.Sync() }()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
	}

	w := &printing.Worker{
		Printer:     &printing.WriterPrinter{W: os.Stdout, Log: logger},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-printer",
		Log:         logger,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.PrinterGroup, orders.TopicKitchenTickets, cfg.PrinterWorkers, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("printer consumer started",
			zap.String("group", cfg.PrinterGroup), zap.Int("workers", cfg.PrinterWorkers))
		if err := cons.Start(ctx, w.HandleTicket); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer...")
	cancel()
	<-done
}
