package services

import (
	"context"
	"fmt"

	"budgety/internal/core"
	"budgety/internal/storage"
)

// RecurringService manages recurring-expense templates. Template creation
// sets the due-date cursor to the start date; the cursor is only ever moved
// forward afterwards, by the processing pass.
type RecurringService struct {
	store *storage.Repository
}

func NewRecurringService(store *storage.Repository) *RecurringService {
	return &RecurringService{store: store}
}

func (s *RecurringService) Create(ctx context.Context, re *core.RecurringExpense) error {
	re.NextDueDate = re.StartDate
	re.IsActive = true

	if err := re.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, re.FamilyID, re.CategoryID); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	return s.store.CreateRecurringExpense(ctx, re)
}

// Update loads the template, lets apply mutate the user-editable fields
// (amount, description, frequency, end date, category, active flag — never
// the cursor or start date) and persists the result.
func (s *RecurringService) Update(ctx context.Context, familyID, id string, apply func(*core.RecurringExpense)) (*core.RecurringExpense, error) {
	re, err := s.store.GetRecurringExpense(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	apply(re)

	if err := re.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, familyID, re.CategoryID); err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if err := s.store.UpdateRecurringExpense(ctx, re); err != nil {
		return nil, err
	}
	return re, nil
}

func (s *RecurringService) Delete(ctx context.Context, familyID, id string) error {
	return s.store.DeleteRecurringExpense(ctx, familyID, id)
}
