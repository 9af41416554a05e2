// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockgrid/internal/domain/catalog/item"
	"stockgrid/internal/domain/catalog/site"
	"stockgrid/internal/domain/ledger"
	"stockgrid/internal/infrastructure/http/v1/handlers"
	"stockgrid/internal/infrastructure/http/v1/middleware"
	"stockgrid/internal/infrastructure/storage/postgres"
	"stockgrid/pkg/logger"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	Pool    *pgxpool.Pool
	Logger  *logger.Logger
	Version string

	// Verifier parses bearer tokens into actor identities
	Verifier middleware.TokenVerifier

	Engine      *ledger.Engine
	Journal     ledger.JournalRepository
	Stock       ledger.StockRepository
	ItemService *item.Service
	SiteService *site.Service

	// Idempotency enables the X-Idempotency-Key protocol on mutating routes
	Idempotency *postgres.IdempotencyStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1, authenticated
	api := router.Group("/api/v1")
	api.Use(middleware.Actor(cfg.Verifier))
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	// Movements
	{
		handler := handlers.NewMovementHandler(base, cfg.Engine, cfg.Journal)
		api.POST("/movements", handler.Record)
		api.GET("/movements", handler.List)
		api.GET("/movements/:id", handler.Get)
	}

	// Stock levels
	{
		handler := handlers.NewStockHandler(base, cfg.Stock)
		api.GET("/stock/levels", handler.Levels)
		api.GET("/stock/low", handler.Low)
	}

	// Item catalog
	{
		handler := handlers.NewItemHandler(base, cfg.ItemService)
		api.GET("/items", handler.List)
		api.GET("/items/:id", handler.Get)

		manage := api.Group("")
		manage.Use(middleware.RequireRole("catalog:write", "admin"))
		manage.POST("/items", handler.Create)
		manage.PUT("/items/:id", handler.Update)
		manage.POST("/items/:id/archive", handler.Archive)
		manage.POST("/items/:id/restore", handler.Restore)
	}

	// Site registry
	{
		handler := handlers.NewSiteHandler(base, cfg.SiteService)
		api.GET("/sites", handler.List)
		api.GET("/sites/:id", handler.Get)

		manage := api.Group("")
		manage.Use(middleware.RequireRole("catalog:write", "admin"))
		manage.POST("/sites", handler.Create)
		manage.PUT("/sites/:id", handler.Update)
		manage.POST("/sites/:id/deactivate", handler.Deactivate)
		manage.POST("/sites/:id/activate", handler.Activate)
	}

	return router
}
