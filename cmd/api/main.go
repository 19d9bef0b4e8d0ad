package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/auth"
	"github.com/ariefcatur/go-restaurant-pos/internal/config"
	"github.com/ariefcatur/go-restaurant-pos/internal/httpx"
	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/logging"
	"github.com/ariefcatur/go-restaurant-pos/internal/memstore"
	"github.com/ariefcatur/go-restaurant-pos/internal/notify"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/ariefcatur/go-restaurant-pos/internal/postgres"
	"github.com/ariefcatur/go-restaurant-pos/internal/printing"
	"github.com/ariefcatur/go-restaurant-pos/internal/redisx"
	"github.com/ariefcatur/go-restaurant-pos/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	defer func() { _ = logger.Sync() }()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	var store orders.Store
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		store = postgres.NewStore(db, cfg.LockTimeout)
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store with fixtures")
		ms := memstore.New()
		ms.Load(seed.Default())
		store = ms
	}

	// Fanout: local observers directly, or every instance through Redis.
	hub := notify.NewHub(logger, cfg.CORSOrigins)
	var sinks []notify.Sink
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		relay := redisx.NewRelay(rdb, logger)
		sinks = append(sinks, relay)
		go func() {
			if err := relay.Run(ctx, hub); err != nil {
				logger.Error("redis relay stopped", zap.Error(err))
			}
		}()
	} else {
		sinks = append(sinks, hub)
	}

	// Kafka: event stream + kitchen ticket queue
	var printer orders.Printer = &printing.WriterPrinter{W: os.Stdout, Log: logger}
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		evProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPOSEvents, cfg.FanoutBuffer, logger)
		evProd.Start()
		tkProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicKitchenTickets, 256, logger)
		tkProd.Start()
		producers = append(producers, evProd, tkProd)

		sinks = append(sinks, &notify.KafkaSink{Producer: evProd, Service: cfg.ServiceName})
		printer = &printing.KafkaPrinter{Producer: tkProd, Service: cfg.ServiceName}
	}

	disp := notify.NewDispatcher(cfg.FanoutBuffer, logger, sinks...)
	disp.Start()

	svc := orders.NewService(store,
		orders.WithNotifier(disp),
		orders.WithPrinter(printer),
		orders.WithLogger(logger),
	)

	router := httpx.NewRouter(logger, cfg.CORSOrigins)
	h := &httpx.Handler{Service: svc, Hub: hub, Log: logger, Timeout: cfg.RequestTimeout}
	h.Register(router, auth.NewVerifier(cfg.JWTSecret))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	svc.Wait()   // pending tickets
	disp.Close() // drain fanout queue
	logger.Info("disconnecting observers",
		zap.Int("total", hub.Clients("")),
		zap.Int("kitchen", hub.Clients(auth.RoleKitchen)),
		zap.Int("waiter", hub.Clients(auth.RoleWaiter)),
		zap.Int("cashier", hub.Clients(auth.RoleCashier)),
	)
	hub.Close()
	for _, p := range producers {
		p.Close()
		p.WaitClosed()
	}
	cancel()
}
