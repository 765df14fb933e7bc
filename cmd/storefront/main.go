package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cache"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/catalog"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/checkout"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/config"
	h "github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/http"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/logger"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/orders"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/publisher"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	zl.Info("storefront starting...")

	tracerProvider := logger.SetupTracing(h.DefaultServiceName)
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			zl.Warn("tracer provider shutdown failed", zap.Error(err))
		}
	}()

	// Catalog
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		zl.Fatal("failed to open catalog database", zap.Error(err))
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(); err != nil {
		zl.Fatal("failed to run catalog migrations", zap.Error(err))
	}

	// Order history
	orderRepo, err := openOrderRepository(cfg)
	if err != nil {
		zl.Fatal("failed to open orders database", zap.Error(err), zap.String("driver", cfg.OrdersDBDriver))
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(); err != nil {
		zl.Fatal("failed to run orders migrations", zap.Error(err))
	}
	zl.Info("database migrations completed", zap.String("orders_driver", orderRepo.Dialect()))

	// Cart cache and last-order slot
	var (
		cartCache cache.CartCache = cache.NewMemoryCache(cfg.CacheTTL)
		slot      orders.Slot     = orders.NewMemorySlot()
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		}
		cartCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
		slot = orders.NewRedisSlot(redisClient, cfg.CacheTTL)
		zl.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	} else {
		zl.Warn("REDIS_ADDR not set, carts and last orders are kept in memory")
	}

	// Services
	menu := pricing.DefaultMenu()
	cartService := cart.NewCartService(cartCache, cfg.Rates, zl.Named("cart"))
	ordersService := orders.NewOrdersService(orderRepo, slot, zl.Named("orders"))

	processor := checkout.NewBreakerProcessor(
		checkout.NewSimulatedProcessor(cfg.ProcessingDelay),
		cfg.Breaker,
		zl.Named("payment"),
	)
	checkoutService := checkout.NewCheckoutService(cartService, checkout.Dependencies{
		Rates:     cfg.Rates,
		Processor: processor,
		Recorder:  ordersService,
		Log:       zl.Named("checkout"),
	})

	// HTTP
	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(catalogRepo, menu, cfg.RequestTimeout, zl),
		Cart:     h.NewCartHandler(cartService, catalogRepo, menu, cfg.RequestTimeout, zl),
		Checkout: h.NewCheckoutHandler(checkoutService, zl),
		Orders:   h.NewOrdersHandler(ordersService, cfg.RequestTimeout, zl),
	}, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		ServiceName:        h.DefaultServiceName,
		TracerProvider:     tracerProvider,
		Propagator:         logger.Propagator(),
	}, zl.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// Idle session eviction
	sweeper := cart.NewSweeper(cfg.SessionSweepInterval, cfg.SessionIdleTimeout, zl.Named("sessions"),
		cartService, checkoutService)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	// Outbox poller
	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(
			orderRepo,
			publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...),
			zl.Named("outbox"),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
		zl.Info("outbox poller enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		zl.Info("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	go func() {
		zl.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	stop()

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	wg.Wait()

	zl.Info("server exited")
}

func openOrderRepository(cfg *config.Config) (*orders.Repository, error) {
	if cfg.OrdersDBDriver == storage.DialectPostgres {
		return orders.NewPostgresRepository(&cfg.OrdersDB)
	}
	return orders.NewSQLiteRepository(cfg.OrdersDBPath)
}
