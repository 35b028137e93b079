package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgety/internal/amqp"
	"budgety/internal/auth"
	"budgety/internal/cache"
	"budgety/internal/config"
	"budgety/internal/core"
	"budgety/internal/export"
	"budgety/internal/http"
	"budgety/internal/logging"
	"budgety/internal/metrics"
	"budgety/internal/services"
	"budgety/internal/storage"
)

func main() {
	// Load .env for local development; absent in production images.
	_ = godotenv.Load()
	logging.Setup()

	slog.Info("Starting budgety API server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to open storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to connect to AMQP, notifications disabled", "error", err)
		} else {
			defer client.Close()
			events = client
			slog.Info("AMQP connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		slog.Info("AMQP not configured, notifications disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exporter *export.SheetsExporter
	if cfg.GoogleSpreadsheetID != "" {
		exporter, err = export.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			slog.Warn("Failed to initialize Sheets exporter, report export disabled", "error", err)
			exporter = nil
		}
	}

	server := http.NewServer(http.Options{
		Store:     store,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiry),
		Authn:     auth.NewAuthenticator(store),
		Families:  services.NewFamilyService(store, events),
		Expenses:  services.NewExpenseService(store, events),
		Recurring: services.NewRecurringService(store),
		Reports:   services.NewReportService(store),
		Exporter:  exporter,
		Roles:     cache.NewLRU[core.Role](cfg.RoleCacheSize, cfg.RoleCacheTTL),
	})

	apiSrv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsMux := nethttp.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &nethttp.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("API listening", "port", cfg.Port)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("Metrics listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("API shutdown error", "error", err)
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}
