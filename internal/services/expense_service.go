// Package services holds the business logic between the HTTP layer and the
// repository: expense orchestration, recurring template handling, the daily
// processing pass and report assembly.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgety/internal/amqp"
	"budgety/internal/core"
	"budgety/internal/storage"
)

// EventPublisher publishes family notification events. A nil publisher
// disables notifications without changing any other behavior.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.Event) error
}

// ExpenseService creates and mutates expenses and emits notification events.
type ExpenseService struct {
	store  *storage.Repository
	events EventPublisher
}

func NewExpenseService(store *storage.Repository, events EventPublisher) *ExpenseService {
	return &ExpenseService{store: store, events: events}
}

func (s *ExpenseService) Create(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, e.FamilyID, e.CategoryID); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, &amqp.Event{
		Type:        amqp.EventExpenseCreated,
		FamilyID:    e.FamilyID,
		ActorID:     e.CreatedBy,
		ExpenseID:   e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		OccurredAt:  time.Now(),
	})
	return nil
}

func (s *ExpenseService) Update(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, e.FamilyID, e.CategoryID); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	return s.store.UpdateExpense(ctx, e)
}

func (s *ExpenseService) Delete(ctx context.Context, familyID, id string) error {
	return s.store.DeleteExpense(ctx, familyID, id)
}

// CanModify enforces the ownership rule: only the creator or a family ADMIN
// may edit or delete an expense.
func CanModify(createdBy, callerID string, callerRole core.Role) bool {
	return createdBy == callerID || callerRole.HasAtLeast(core.RoleAdmin)
}

// publish emits an event best-effort; a broker outage never fails the
// originating request.
func (s *ExpenseService) publish(ctx context.Context, event *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish family event",
			"type", event.Type,
			"family_id", event.FamilyID,
			"error", err)
	}
}
