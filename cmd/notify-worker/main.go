package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgety/internal/amqp"
	"budgety/internal/config"
	"budgety/internal/core"
	"budgety/internal/logging"
	"budgety/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	slog.Info("Starting notify-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL is required for the notify-worker")
		os.Exit(1)
	}

	store, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to open storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("Consuming family events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeEvents(ctx, func(event *amqp.Event) error {
		n := core.Notification{
			FamilyID:  event.FamilyID,
			Type:      event.Type,
			Message:   messageFor(event),
			ActorID:   event.ActorID,
			ExpenseID: event.ExpenseID,
		}
		if err := store.CreateNotification(ctx, &n); err != nil {
			return fmt.Errorf("store notification: %w", err)
		}
		slog.InfoContext(ctx, "Notification stored",
			"family_id", event.FamilyID,
			"type", event.Type)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Notify-worker shutdown complete")
}

func messageFor(event *amqp.Event) string {
	amount := core.Money{Cents: event.AmountCents}
	switch event.Type {
	case amqp.EventExpenseCreated:
		return fmt.Sprintf("New expense: %s (%s)", event.Description, amount.String())
	case amqp.EventRecurringMaterialized:
		return fmt.Sprintf("Recurring expense added: %s (%s)", event.Description, amount.String())
	case amqp.EventMemberAdded:
		return fmt.Sprintf("%s joined the family", event.Description)
	default:
		return event.Description
	}
}
