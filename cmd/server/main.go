package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yieldvault.backend/internal/app"
	"yieldvault.backend/internal/config"
	"yieldvault.backend/internal/infrastructure/datasources"
	"yieldvault.backend/internal/infrastructure/metrics"
	"yieldvault.backend/internal/infrastructure/notify"
	"yieldvault.backend/internal/interfaces/http/handlers"
	"yieldvault.backend/internal/interfaces/http/middleware"
	"yieldvault.backend/pkg/jwt"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv   = godotenv.Load
	loadCfg      = config.Load
	initLog      = logger.Init
	connectRedis = redis.Connect
	openDB       = datasources.Open
	newNotifier  = notify.New
	runServer    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownCh   = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	rdb, err := connectRedis(cfg.Redis.URL, cfg.Redis.PASSWORD)
	if err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer rdb.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer datasources.Close(db)
	if err := datasources.Ping(ctx, db); err == nil {
		logger.Info(ctx, "Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	notifier, closer, err := newNotifier(cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedger(registry)

	svc := app.Build(cfg, db, app.Options{
		Notifier:   notifier,
		Metrics:    ledgerMetrics,
		PriceCache: redis.NewClient(rdb, "price"),
	})

	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Payout.Enabled {
		payoutJob := svc.PayoutJob(cfg.Payout, ledgerMetrics)
		go payoutJob.Start(jobCtx)
		defer payoutJob.Stop()
	}

	r := newRouter(routeDeps{
		ledgerHandler:     handlers.NewLedgerHandler(svc.Ledger, svc.Portfolio),
		investmentHandler: handlers.NewInvestmentHandler(svc.Ledger, svc.Plans),
		adminHandler:      handlers.NewAdminHandler(svc.Settlement, svc.Ledger, svc.Plans),
		webhookHandler:    handlers.NewWebhookHandler(svc.Ledger, cfg.Webhook.Secret),
		authMiddleware:    middleware.AuthMiddleware(tokens),
		idempotency:       middleware.IdempotencyMiddleware(redis.NewClient(rdb, "idempotency"), cfg.Ledger.IdempotencyTTL),
		registry:          registry,
		healthCheck:       dbHealth(db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "YieldVault backend starting", zap.String("port", cfg.Server.Port))
		serveErr <- runServer(srv)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-shutdownCh():
		logger.Info(ctx, "Shutting down server")
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func dbHealth(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return datasources.Ping(ctx, db)
	}
}
