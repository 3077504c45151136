package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightgoods/storefront-backend/api/controllers"
	"github.com/brightgoods/storefront-backend/api/routes"
	"github.com/brightgoods/storefront-backend/internal/bus"
	"github.com/brightgoods/storefront-backend/internal/cart"
	checkoutsvc "github.com/brightgoods/storefront-backend/internal/checkout"
	"github.com/brightgoods/storefront-backend/internal/orders"
	"github.com/brightgoods/storefront-backend/internal/remote"
	"github.com/brightgoods/storefront-backend/internal/storage"
	"github.com/brightgoods/storefront-backend/pkg/config"
	"github.com/brightgoods/storefront-backend/pkg/db"
	"github.com/brightgoods/storefront-backend/pkg/logger"
	"github.com/brightgoods/storefront-backend/pkg/metrics"
	"github.com/brightgoods/storefront-backend/pkg/migrate"
	"github.com/brightgoods/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, pingers, cleanup, err := buildStore(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage backend", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	commerce := metrics.NewCommerceMetrics(registry)

	events := bus.New()
	mirror := remote.New(cfg.RemoteSync)

	cartService, err := cart.NewService(store, logg, commerce, cfg.Storage.Namespace)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(store, logg, commerce, cfg.Storage.Namespace)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, ordersService, events, mirror, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			pingers,
			events,
			cartService,
			ordersService,
			checkoutService,
			mirror,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildStore boots whichever key-value backend the config selects, along with
// the readiness pingers and a close hook for the ones that hold connections.
func buildStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, map[string]controllers.Pinger, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		return storage.NewMemoryStore(), map[string]controllers.Pinger{}, func() {}, nil

	case config.StorageBackendRedis:
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}
		return storage.NewRedisStore(redisClient), map[string]controllers.Pinger{"redis": redisClient}, cleanup, nil

	case config.StorageBackendDatabase:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		gormStore := storage.NewGormStore(dbClient)
		if cfg.FeatureFlags.AutoMigrate {
			if err := gormStore.AutoMigrate(); err != nil {
				cleanup()
				return nil, nil, nil, err
			}
		}
		return gormStore, map[string]controllers.Pinger{"database": dbClient}, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
