package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgety/internal/amqp"
	"budgety/internal/core"
	"budgety/internal/metrics"
	"budgety/internal/storage"
)

// RecurringProcessor materializes expenses from due recurring templates.
//
// One pass handles each due template independently: create the expense dated
// at the template's current cursor, then advance the cursor by one frequency
// step. A failure on either write is logged and the template is skipped; it
// stays due and is reconsidered on the next tick, so materialization is
// at-least-once under partial failure.
type RecurringProcessor struct {
	store  *storage.Repository
	events EventPublisher
}

func NewRecurringProcessor(store *storage.Repository, events EventPublisher) *RecurringProcessor {
	return &RecurringProcessor{store: store, events: events}
}

// ProcessDue runs one processing pass at the given wall-clock time and
// returns how many expenses were materialized.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	metrics.RecurringTicks.Inc()

	due, err := p.store.ListDueRecurringExpenses(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"due", len(due),
		"processing_date", now.Format(core.DateLayout))

	processed := 0
	for _, re := range due {
		dueDate := re.NextDueDate

		expense := core.Expense{
			FamilyID:    re.FamilyID,
			CategoryID:  re.CategoryID,
			CreatedBy:   re.CreatedBy,
			Description: re.Description,
			Amount:      re.Amount,
			// The economic date is the due date, not "now": a late tick must
			// not shift the charge.
			Date:        dueDate,
			RecurringID: re.ID,
		}

		if err := p.store.CreateExpense(ctx, &expense); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize expense from template",
				"template_id", re.ID,
				"description", re.Description,
				"error", err)
			metrics.RecurringFailures.Inc()
			continue
		}

		next := core.NextOccurrence(re.Frequency, dueDate)
		if err := p.store.AdvanceNextDueDate(ctx, re.ID, next); err != nil {
			// Expense landed but the cursor did not move; the template will
			// be reprocessed next tick (accepted at-least-once tradeoff).
			slog.ErrorContext(ctx, "Failed to advance due-date cursor",
				"template_id", re.ID,
				"error", err)
			metrics.RecurringFailures.Inc()
			continue
		}

		processed++
		metrics.RecurringProcessed.Inc()

		slog.InfoContext(ctx, "Materialized expense from recurring template",
			"template_id", re.ID,
			"expense_id", expense.ID,
			"description", re.Description,
			"amount_cents", re.Amount.Cents,
			"due_date", dueDate.Format(core.DateLayout),
			"next_due_date", next.Format(core.DateLayout))

		p.publish(ctx, &amqp.Event{
			Type:        amqp.EventRecurringMaterialized,
			FamilyID:    re.FamilyID,
			ActorID:     re.CreatedBy,
			ExpenseID:   expense.ID,
			Description: re.Description,
			AmountCents: re.Amount.Cents,
			OccurredAt:  now,
		})
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processed,
		"due", len(due))

	return processed, nil
}

func (p *RecurringProcessor) publish(ctx context.Context, event *amqp.Event) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish materialization event",
			"family_id", event.FamilyID,
			"error", err)
	}
}
