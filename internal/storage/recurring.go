package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

func (r *Repository) CreateRecurringExpense(ctx context.Context, re *core.RecurringExpense) error {
	if re.ID == "" {
		re.ID = uuid.New().String()
	}
	now := time.Now()
	re.CreatedAt = now
	re.UpdatedAt = now

	var endDate any
	if re.EndDate != nil {
		endDate = fmtDate(*re.EndDate)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_expenses
		 (id, family_id, category_id, created_by, description, amount_cents, frequency,
		  start_date, end_date, next_due_date, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		re.ID, re.FamilyID, re.CategoryID, re.CreatedBy, re.Description, re.Amount.Cents,
		string(re.Frequency), fmtDate(re.StartDate), endDate, fmtDate(re.NextDueDate),
		boolToInt(re.IsActive), fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("create recurring expense: %w", err)
	}
	return nil
}

func (r *Repository) GetRecurringExpense(ctx context.Context, familyID, id string) (*core.RecurringExpense, error) {
	row := r.db.QueryRowContext(ctx, selectRecurring+` WHERE id = ? AND family_id = ?`, id, familyID)
	re, err := scanRecurringFrom(row)
	if err != nil {
		return nil, notFoundOr(err, "get recurring expense")
	}
	return re, nil
}

func (r *Repository) ListRecurringExpenses(ctx context.Context, familyID string, page, limit int) ([]core.RecurringExpense, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recurring_expenses WHERE family_id = ?`, familyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recurring expenses: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectRecurring+` WHERE family_id = ? ORDER BY created_at LIMIT ? OFFSET ?`,
		familyID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	var templates []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurringFrom(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recurring expense: %w", err)
		}
		templates = append(templates, *re)
	}
	return templates, total, rows.Err()
}

// ListDueRecurringExpenses selects every template eligible for
// materialization at `now`: active, cursor at or before now, and not past its
// end date.
func (r *Repository) ListDueRecurringExpenses(ctx context.Context, now time.Time) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		selectRecurring+` WHERE is_active = 1 AND next_due_date <= ? AND (end_date IS NULL OR end_date >= ?)`,
		fmtDate(now), fmtDate(now))
	if err != nil {
		return nil, fmt.Errorf("list due recurring expenses: %w", err)
	}
	defer rows.Close()

	var due []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurringFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due recurring expense: %w", err)
		}
		due = append(due, *re)
	}
	return due, rows.Err()
}

// AdvanceNextDueDate moves the template's cursor forward. It is the only
// write the processing pass performs on a template.
func (r *Repository) AdvanceNextDueDate(ctx context.Context, id string, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses SET next_due_date = ?, updated_at = ? WHERE id = ?`,
		fmtDate(next), fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("advance next due date: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) UpdateRecurringExpense(ctx context.Context, re *core.RecurringExpense) error {
	var endDate any
	if re.EndDate != nil {
		endDate = fmtDate(*re.EndDate)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_expenses
		 SET category_id = ?, description = ?, amount_cents = ?, frequency = ?, end_date = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND family_id = ?`,
		re.CategoryID, re.Description, re.Amount.Cents, string(re.Frequency), endDate,
		boolToInt(re.IsActive), fmtTime(time.Now()), re.ID, re.FamilyID)
	if err != nil {
		return fmt.Errorf("update recurring expense: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteRecurringExpense(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_expenses WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	return requireAffected(res)
}

const selectRecurring = `SELECT id, family_id, category_id, created_by, description, amount_cents,
	frequency, start_date, end_date, next_due_date, is_active, created_at, updated_at
	FROM recurring_expenses`

func scanRecurringFrom(s expenseScanner) (*core.RecurringExpense, error) {
	var re core.RecurringExpense
	var frequency, startDate, nextDue, createdAt, updatedAt string
	var endDate sql.NullString
	var isActive int
	err := s.Scan(&re.ID, &re.FamilyID, &re.CategoryID, &re.CreatedBy, &re.Description,
		&re.Amount.Cents, &frequency, &startDate, &endDate, &nextDue, &isActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	re.Frequency = core.Frequency(frequency)
	re.StartDate = parseDate(startDate)
	if endDate.Valid {
		d := parseDate(endDate.String)
		re.EndDate = &d
	}
	re.NextDueDate = parseDate(nextDue)
	re.IsActive = isActive != 0
	re.CreatedAt = parseTime(createdAt)
	re.UpdatedAt = parseTime(updatedAt)
	return &re, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
