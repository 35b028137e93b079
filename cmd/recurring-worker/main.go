package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgety/internal/amqp"
	"budgety/internal/config"
	"budgety/internal/lock"
	"budgety/internal/logging"
	"budgety/internal/metrics"
	"budgety/internal/services"
	"budgety/internal/storage"
)

const tickLockName = "budgety:recurring-tick"

func main() {
	_ = godotenv.Load()
	logging.Setup()

	slog.Info("Starting recurring-worker")

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
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Without Redis the worker runs unguarded; that is fine for a single
	// instance but two workers on the same database will double-materialize.
	var jobLock *lock.JobLock
	if cfg.RedisAddr != "" {
		jobLock, err = lock.New(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer jobLock.Close()
		slog.Info("Tick lock enabled", "lock", tickLockName, "ttl", cfg.TickLockTTL)
	} else {
		slog.Warn("REDIS_ADDR not set, running without tick lock")
	}

	processor := services.NewRecurringProcessor(store, events)

	runPass := func(now time.Time) {
		if jobLock != nil {
			held, err := jobLock.Acquire(ctx, tickLockName, cfg.TickLockTTL)
			if errors.Is(err, lock.ErrNotObtained) {
				metrics.TickSkipped.Inc()
				slog.Info("Tick lock held elsewhere, skipping pass")
				return
			}
			if err != nil {
				slog.Error("Failed to acquire tick lock", "error", err)
				return
			}
			defer func() {
				if err := held.Release(ctx); err != nil {
					slog.Error("Failed to release tick lock", "lock", tickLockName, "error", err)
				}
			}()
		}

		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			slog.Error("Processing pass failed", "error", err)
			return
		}
		slog.Info("Processing pass complete", "expenses_created", count)
	}

	// One pass at startup so a worker that was down over a due date catches
	// up immediately instead of waiting for the next tick.
	runPass(time.Now())

	for {
		next := nextTick(time.Now(), cfg.TickHour)
		slog.Info("Sleeping until next tick", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Shutdown signal received")
			return
		case now := <-timer.C:
			runPass(now)
		}
	}
}

// nextTick returns the next local wall-clock occurrence of hour.
func nextTick(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
