package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/cache"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/event"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/logger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/migration"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/persistence"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/scheduler"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/telemetry"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/interfaces/http/handler"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/interfaces/http/middleware"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting print ledger",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meters.Meter("ledger"))
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	debtCache, err := cache.NewDebtReportCacheFactory(cfg.Redis, cfg.Ledger,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create debt report cache", zap.Error(err))
	}

	bus := event.NewInMemoryEventBus(log)
	repos := persistence.NewGormRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	opts := appledger.Options{
		MaxLockRetries: cfg.Ledger.MaxLockRetries,
		CascadeMode:    appledger.CascadeMode(cfg.Ledger.CascadeMode),
		Publisher:      bus,
		Metrics:        ledgerMetrics,
		Logger:         log,
	}

	invoiceService := appledger.NewInvoiceService(repos, scope, opts)
	paymentService := appledger.NewPaymentService(repos, scope, opts)
	cascadeService := appledger.NewCascadeService(repos, scope, opts)
	debtService := appledger.NewDebtService(repos, debtCache, opts)
	commissionService := appledger.NewCommissionService(repos, opts)

	refreshConfig := scheduler.DefaultRefreshConfig()
	refreshConfig.Debounce = cfg.Ledger.RefreshDebounce
	refresher, err := scheduler.NewRefreshScheduler(refreshConfig, debtService.Refresh, log)
	if err != nil {
		log.Fatal("Failed to create debt refresh scheduler", zap.Error(err))
	}
	bus.Subscribe(event.NewLogHandler(log))
	bus.Subscribe(refresher)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if err := refresher.Start(ctx); err != nil {
		log.Fatal("Failed to start debt refresh scheduler", zap.Error(err))
	}

	var limiter *middleware.RateLimiter
	stopCleanup := make(chan struct{})
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.RunCleanup(stopCleanup)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(log, router.EngineOptions{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		RateLimiter: limiter,
	}, router.Handlers{
		Invoices: handler.NewInvoiceHandler(invoiceService, paymentService),
		Payments: handler.NewPaymentHandler(paymentService),
		Orders:   handler.NewOrderHandler(cascadeService, invoiceService),
		Reports:  handler.NewReportHandler(debtService, commissionService),
		Health:   handler.NewHealthHandler(db, cfg.App.Version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopCleanup)
	if err := refresher.Stop(shutdownCtx); err != nil {
		log.Warn("Debt refresh scheduler did not stop cleanly", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if closer, ok := debtCache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn("Error closing debt report cache", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down metrics", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracing", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects, installs query tracing and brings the schema up to date:
// embedded SQL migrations for postgres, gorm AutoMigrate for sqlite.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	opts := persistence.DatabaseOptions{
		Logger:   log.Named("gorm"),
		LogLevel: logger.MapGormLogLevel(cfg.Log.Level),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == config.DriverSQLite {
			dbSystem = "sqlite"
		}
		opts.Plugins = []interface{ Register(db *gorm.DB) error }{
			telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
				Enabled:         true,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
				DBSystem:        dbSystem,
			}, log),
		}
	}

	db, err := persistence.NewDatabase(&cfg.Database, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	// The migrator closes the connection it is given, so it gets its own
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	migrator, err := migration.New(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		_ = db.Close()
		return nil, err
	}
	defer func() { _ = migrator.Close() }()
	if err := migrator.Up(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
