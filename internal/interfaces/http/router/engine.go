package router

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/logger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/interfaces/http/handler"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the ledger HTTP handlers
type Handlers struct {
	Invoices *handler.InvoiceHandler
	Payments *handler.PaymentHandler
	Orders   *handler.OrderHandler
	Reports  *handler.ReportHandler
	Health   *handler.HealthHandler
}

// EngineOptions configures the middleware chain
type EngineOptions struct {
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
}

// NewEngine builds the gin engine with the middleware chain and every ledger route.
// Order: request id, recovery, access log, tracing, security headers, CORS, body limit, rate limit.
func NewEngine(log *zap.Logger, opts EngineOptions, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(opts.Tracing)...)
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	NewRouter(engine).Register(LedgerRoutes(h)...).Setup()
	return engine
}

// LedgerRoutes returns the route groups of the ledger API
func LedgerRoutes(h Handlers) []RouteRegistrar {
	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoices.Create).
		GET("/:id", h.Invoices.Get).
		PUT("/:id", h.Invoices.Update).
		DELETE("/:id", h.Invoices.Delete).
		PATCH("/:id/status", h.Invoices.SetStatus).
		GET("/:id/payments", h.Invoices.ListPayments).
		GET("/:id/allocation-cap", h.Invoices.AllocationCap).
		POST("/:id/items", h.Invoices.AddItem).
		DELETE("/:id/items/:item_id", h.Invoices.DeleteItem)

	customers := NewDomainGroup("customers", "/customers").
		GET("/:id/outstanding-invoices", h.Payments.ListOutstanding)

	payments := NewDomainGroup("payments", "/payments").
		POST("", h.Payments.Record).
		DELETE("/:id", h.Payments.Delete)

	orders := NewDomainGroup("orders", "/orders").
		DELETE("/:id", h.Orders.Delete).
		POST("/:id/sync-payment-status", h.Orders.SyncPaymentStatus)

	reports := NewDomainGroup("reports", "/reports")
	reports.Group("customer-debts", "/customer-debts").
		GET("", h.Reports.CustomerDebts).
		POST("/refresh", h.Reports.RefreshCustomerDebts)

	commissions := NewDomainGroup("commissions", "/commissions").
		GET("", h.Reports.Commissions)

	return []RouteRegistrar{invoices, customers, payments, orders, reports, commissions}
}
