// Package main is the entry point for the shopledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopledger/internal/config"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/cash"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/registers/balance"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/cache"
	v1 "shopledger/internal/infrastructure/http/v1"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/auth_repo"
	"shopledger/internal/infrastructure/storage/postgres/catalog_repo"
	"shopledger/internal/infrastructure/storage/postgres/document_repo"
	"shopledger/internal/infrastructure/storage/postgres/register_repo"
	"shopledger/internal/infrastructure/storage/postgres/report_repo"
	"shopledger/pkg/logger"
	"shopledger/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting shopledger server", "env", cfg.AppEnv)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)

	auditLog, err := postgres.NewAuditLog(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit log", "error", err)
	}

	// --- Redis (optional) ---
	checks := map[string]handlers.Checker{"postgres": pool}

	redisClient, err := cache.NewClient(ctx, cache.Config{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warnw("redis unavailable, readiness will not check it", "error", err)
	} else {
		defer redisClient.Close()
		checks["redis"] = redisClient
	}

	// --- Repositories ---
	users := auth_repo.NewUserRepo(txm)
	shopRepo := auth_repo.NewShopRepo(txm)
	products := catalog_repo.NewProductRepo(txm)
	counterparties := catalog_repo.NewCounterpartyRepo(txm)
	docs := document_repo.NewDocumentRepo(txm)
	transactions := register_repo.NewTransactionRepo(txm)
	movements := register_repo.NewStockRepo(txm)

	// --- Services ---
	jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtCfg.Issuer = cfg.JWT.Issuer
	jwtCfg.AccessTokenTTL = cfg.JWT.TTL
	jwtService := auth.NewJWTService(jwtCfg)

	shops := shop.NewService(shopRepo)
	deps := documents.Deps{
		Shops:     shops,
		Documents: docs,
		Stock:     stock.NewService(products, movements),
		Balances:  balance.NewService(counterparties),
		Ledger:    cashflow.NewWriter(transactions),
		Numbers:   numerator.NewWithQuerier(txm.NumberQuerier),
		Audit:     auditLog,
		TxManager: txm,
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Services: v1.Services{
			Auth:          auth.NewService(users, jwtService, auth.DefaultServiceConfig()),
			Shops:         shops,
			Products:      product.NewService(products, txm, docs),
			Counterparty:  counterparty.NewService(counterparties, txm, docs, transactions),
			Stock:         deps.Stock,
			Sales:         documents.NewService(documents.SaleFlow, deps),
			Purchases:     documents.NewService(documents.PurchaseFlow, deps),
			Cash:          cash.NewAllocator(deps),
			Transactions:  cashflow.NewService(transactions, deps.Ledger),
			Reports:       reports.NewService(report_repo.NewReportRepo(txm)),
			Notifications: notification.NewService(postgres.NewNotificationRepo(txm), txm, postgres.NewOutboxPublisher(txm)),
		},
		Idempotency:  postgres.NewIdempotencyStore(txm, postgres.DefaultIdempotencyTTL),
		HealthChecks: checks,
		Debug:        cfg.AppEnv == "development",
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Errorw("server forced to shutdown", "error", err)
	}
	pool.LogStats(ctx)

	log.Info("server stopped")
}
