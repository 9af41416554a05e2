// Package main is the entry point for the stockgrid API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockgrid/internal/domain/auth"
	"stockgrid/internal/domain/catalog/item"
	"stockgrid/internal/domain/catalog/site"
	"stockgrid/internal/domain/ledger"
	v1 "stockgrid/internal/infrastructure/http/v1"
	"stockgrid/internal/infrastructure/storage/postgres"
	"stockgrid/pkg/config"
	"stockgrid/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting stockgrid server", "version", version, "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)

	// --- Repositories ---
	itemRepo := postgres.NewItemRepo(txm)
	siteRepo := postgres.NewSiteRepo(txm)
	stockRepo := postgres.NewStockRepo(txm)
	journalRepo := postgres.NewJournalRepo(txm)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	itemService := item.NewService(itemRepo, auditService)
	siteService := site.NewService(siteRepo, auditService)

	// --- Movement engine ---
	sink := postgres.NewOutboxSink(txm)
	engine := ledger.NewEngine(itemRepo, siteRepo, stockRepo, journalRepo, txm, sink)

	// --- Token verification ---
	jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
	if cfg.JWT.Issuer != "" {
		jwtCfg.Issuer = cfg.JWT.Issuer
	}
	verifier := auth.NewJWTVerifier(jwtCfg)

	// --- Idempotency ---
	idempotencyStore := postgres.NewIdempotencyStore(txm, 24*time.Hour)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool.Unwrap(),
		Logger:      log,
		Version:     version,
		Verifier:    verifier,
		Engine:      engine,
		Journal:     journalRepo,
		Stock:       stockRepo,
		ItemService: itemService,
		SiteService: siteService,
		Idempotency: idempotencyStore,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
