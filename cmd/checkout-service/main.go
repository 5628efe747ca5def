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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/api"
	"github.com/Cheertaboi/medicine-checkout-service/internal/config"
	"github.com/Cheertaboi/medicine-checkout-service/internal/repository"
	"github.com/Cheertaboi/medicine-checkout-service/internal/service"
	"github.com/Cheertaboi/medicine-checkout-service/internal/storage"
	"github.com/Cheertaboi/medicine-checkout-service/pkg/db"
	"github.com/Cheertaboi/medicine-checkout-service/pkg/logger"
)

func main() {
	// a missing .env is fine; the environment wins either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("checkout-service stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	pgCfg, err := db.LoadPostgresConfig()
	if err != nil {
		return err
	}
	conn, err := db.NewPostgresConnection(pgCfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, pgCfg.MigrationsDir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	slot, closeSlot, err := openSlot(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSlot()

	coupons := service.NewCouponService(service.DefaultCoupons)
	orders := repository.NewOrderRepo(conn, cfg.OrderIDPrefix, func(code string) int {
		c, _ := coupons.Lookup(code)
		return c.MaxUsagePerUser
	})
	addresses := repository.NewAddressRepo(conn)
	wallets := repository.NewWalletRepo(conn)

	creator := service.NewBreakerOrderCreator(orders, service.BreakerSettings{
		Name:             "orders-db",
		FailureThreshold: uint32(cfg.BreakerFailures),
		OpenTimeout:      cfg.BreakerOpenTimeout,
		Ignore:           repository.IsRejection,
	}, log)

	carts := service.NewCartStores(slot, log)
	checkout := service.NewCheckoutService(carts, coupons, addresses, wallets,
		service.NewOrderAssembler(creator, log), log)

	router := api.NewRouter(api.Deps{
		Carts:          carts,
		Coupons:        coupons,
		Catalog:        service.DefaultCoupons,
		Checkout:       checkout,
		Addresses:      addresses,
		Wallets:        wallets,
		Orders:         orders,
		Usage:          repository.NewUsageRepo(conn),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "checkout-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting checkout-service",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("cart_backend", cfg.CartBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// openSlot connects the cart slot backend named by the config.
func openSlot(ctx context.Context, cfg config.Config, log *zap.Logger) (storage.Slot, func(), error) {
	switch cfg.CartBackend {
	case config.CartBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		log.Info("cart slots on redis", zap.String("addr", cfg.RedisAddr))
		return storage.NewRedisSlot(client, cfg.CartTTL), func() { client.Close() }, nil

	case config.CartBackendMongo:
		mdb, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		slot := storage.NewMongoSlot(mdb)
		if err := slot.CreateIndexes(ctx, cfg.CartTTL); err != nil {
			_ = mdb.Client().Disconnect(ctx)
			return nil, nil, err
		}
		log.Info("cart slots on mongodb", zap.String("database", cfg.MongoDB))
		return slot, func() { _ = mdb.Client().Disconnect(context.Background()) }, nil

	case config.CartBackendMemory:
		log.Warn("cart slots in memory; carts are lost on restart")
		return storage.NewMemorySlot(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown CART_BACKEND %q", cfg.CartBackend)
	}
}
