package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rfallows/camshaft/internal"
	"github.com/rfallows/camshaft/internal/handler"
	"github.com/rfallows/camshaft/internal/middleware"
	"github.com/rfallows/camshaft/internal/notify"
	"github.com/rfallows/camshaft/internal/payment"
	"github.com/rfallows/camshaft/internal/postgres"
	"github.com/rfallows/camshaft/internal/service"
	"github.com/rfallows/camshaft/internal/telemetry"
	"github.com/rfallows/camshaft/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Run migrations over database/sql, then hand the pool to the stores
	logger.Info().Msg("connecting to database")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info().Msg("database migrations completed")

	pool, err := postgres.NewPool(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// Event publisher. No broker configured means events are dropped.
	var publisher notify.Publisher = notify.NoopPublisher{}
	if cfg.NatsUrl != "" {
		natsPublisher, err := notify.NewNATSPublisher(cfg.NatsUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info().Str("url", cfg.NatsUrl).Msg("nats publisher connected")
	} else {
		logger.Warn().Msg("no NATS_URL configured, event publishing disabled")
	}

	metrics := telemetry.NewBusinessMetrics("camshaft")

	// Payment providers: card charges go through Stripe, everything else is
	// recorded manually with a generated transaction reference.
	cardProvider := payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Currency, cfg.Stripe.PaymentMethodID)
	cashProvider := payment.NewManualProvider()

	// Initialize services
	billingService := service.NewBillingService(store, cfg.Rates)
	invoiceService := service.NewInvoiceService(store, store, store, billingService, cfg.Rates, metrics, logger)
	paymentService := service.NewPaymentService(store, store, billingService, cardProvider, cashProvider, cfg.DefaultPaymentMethod, metrics, logger)
	lifecycleService := service.NewLifecycleService(store, store, store, invoiceService, publisher, metrics, logger)
	inventoryService := service.NewInventoryService(store, store, billingService, metrics, logger)
	laborService := service.NewLaborService(store, store, billingService, metrics, logger)
	registryService := service.NewRegistryService(store, store, logger)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	httpMetrics := middleware.NewMetrics("camshaft")
	e.Use(echomw.Recover())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))

	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(httpMetrics.Handler()))

	h := handler.New(
		registryService,
		lifecycleService,
		inventoryService,
		laborService,
		billingService,
		paymentService,
		invoiceService,
		cfg.BaseLaborRate,
		logger,
	)
	h.RegisterRoutes(e)

	// Restock scanner
	scanner := worker.NewRestockScanner(inventoryService, publisher, metrics, worker.Config{
		ScanInterval: cfg.LowStockScanInterval,
	}, logger)
	go func() {
		if err := scanner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("restock scanner stopped")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		logger.Info().Str("address", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
