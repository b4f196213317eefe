package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yieldvault.backend/internal/app"
	"yieldvault.backend/internal/config"
	"yieldvault.backend/internal/infrastructure/datasources"
	"yieldvault.backend/internal/infrastructure/metrics"
	"yieldvault.backend/internal/infrastructure/notify"
	"yieldvault.backend/pkg/logger"
)

var (
	loadDotenv  = godotenv.Load
	loadCfg     = config.Load
	initLog     = logger.Init
	openDB      = datasources.Open
	newNotifier = notify.New
	signalCtx   = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("payout-worker", flag.ContinueOnError)
	once := fs.Bool("once", false, "settle due investments once and exit")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics on this address (disabled when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()

	ctx, stop := signalCtx(context.Background())
	defer stop()

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer datasources.Close(db)
	if err := datasources.Ping(ctx, db); err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}

	notifier, closer, err := newNotifier(cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedger(registry)
	svc := app.Build(cfg, db, app.Options{Notifier: notifier, Metrics: ledgerMetrics})
	job := svc.PayoutJob(cfg.Payout, ledgerMetrics)

	if *once {
		processed, failed := job.RunOnce(ctx)
		logger.Info(ctx, "Payout pass finished", zap.Int("processed", processed), zap.Int("failed", failed))
		if failed > 0 {
			return fmt.Errorf("%d of %d investments failed", failed, processed)
		}
		return nil
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "Metrics listener stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	logger.Info(ctx, "Payout worker started",
		zap.Duration("interval", cfg.Payout.Interval),
		zap.Int("workers", cfg.Payout.Workers),
	)
	job.Start(ctx)
	logger.Info(context.Background(), "Payout worker stopped")
	return nil
}
