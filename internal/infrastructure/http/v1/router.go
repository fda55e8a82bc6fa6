// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/cash"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/http/v1/dto"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/http/v1/middleware"
	"shopledger/pkg/logger"
)

// Services bundles the domain services the API exposes.
type Services struct {
	Auth          *auth.Service
	Shops         *shop.Service
	Products      *product.Service
	Counterparty  *counterparty.Service
	Stock         *stock.Service
	Sales         *documents.Service
	Purchases     *documents.Service
	Cash          *cash.Allocator
	Transactions  *cashflow.Service
	Reports       *reports.Service
	Notifications *notification.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Services Services

	// Idempotency stores keyed responses of ledger mutations. Nil disables replay.
	Idempotency middleware.IdempotencyStore

	// HealthChecks are probed by /health/ready, keyed by dependency name.
	HealthChecks map[string]handlers.Checker

	// Debug enables gin debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.RegisterValidators()

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	svc := cfg.Services

	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, svc.Auth)
		authHandler.RegisterRoutes(
			v1.Group("/auth"),
			v1.Group("/auth", middleware.Auth(cfg.JWTValidator)),
		)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		shopHandler := handlers.NewShopHandler(base, svc.Shops)
		protected.POST("/shops", shopHandler.Create)
		protected.GET("/shops", shopHandler.List)

		handlers.NewNotificationHandler(base, svc.Notifications).
			RegisterRoutes(protected.Group("/notifications"))

		scoped := protected.Group("/shops/:shopId")
		scoped.Use(middleware.ShopAccess(svc.Shops))
		scoped.GET("", shopHandler.Get)

		registerShopRoutes(scoped, base, svc, idempotency(cfg.Idempotency))
	}

	return router
}

func idempotency(store middleware.IdempotencyStore) gin.HandlerFunc {
	if store == nil {
		return passThrough
	}
	return middleware.Idempotency(store)
}

// registerShopRoutes registers every route that works inside one shop.
func registerShopRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc Services, idempotent gin.HandlerFunc) {
	dashboard := handlers.NewDashboardHandler(base, svc.Reports)
	rg.GET("/dashboard", dashboard.Summary)
	rg.GET("/dashboard/chart", dashboard.Chart)

	// --- CATALOGS ---
	products := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*product.Product, dto.ProductRequest]{
		Service:     svc.Products.CatalogService,
		EntityName:  "Product",
		NewEntity:   (*dto.ProductRequest).ToEntity,
		ApplyUpdate: (*dto.ProductRequest).ApplyTo,
	})
	productGroup := rg.Group("/products")
	RegisterCatalogRoutes(productGroup, products)
	productGroup.GET("/:id/movements", handlers.NewStockHandler(base, svc.Stock).History)

	RegisterCatalogRoutes(rg.Group("/customers"),
		handlers.NewCounterpartyHandler(base, svc.Counterparty, counterparty.KindCustomer))
	RegisterCatalogRoutes(rg.Group("/suppliers"),
		handlers.NewCounterpartyHandler(base, svc.Counterparty, counterparty.KindSupplier))

	// --- LEDGER ---
	handlers.NewDocumentHandler(base, svc.Sales).RegisterRoutes(rg.Group("/sales"), idempotent)
	handlers.NewDocumentHandler(base, svc.Purchases).RegisterRoutes(rg.Group("/purchases"), idempotent)
	handlers.NewCashHandler(base, svc.Cash).RegisterRoutes(rg.Group("/cash"), idempotent)
	handlers.NewTransactionHandler(base, svc.Transactions).RegisterRoutes(rg.Group("/transactions"), idempotent)
}
