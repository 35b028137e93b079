package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

func (r *Repository) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	var recurringID any
	if e.RecurringID != "" {
		recurringID = e.RecurringID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, family_id, category_id, created_by, description, amount_cents, date, recurring_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FamilyID, e.CategoryID, e.CreatedBy, e.Description, e.Amount.Cents,
		fmtDate(e.Date), recurringID, fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *Repository) GetExpense(ctx context.Context, familyID, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, category_id, created_by, description, amount_cents, date, recurring_id, created_at, updated_at
		 FROM expenses WHERE id = ? AND family_id = ?`, id, familyID)
	return scanExpense(row)
}

// ListExpenses returns one page of a family's expenses, newest economic date
// first. month ("YYYY-MM") is optional.
func (r *Repository) ListExpenses(ctx context.Context, familyID, month string, page, limit int) ([]core.Expense, int, error) {
	where := `family_id = ?`
	args := []any{familyID}

	if month != "" {
		start, end, err := core.MonthRange(month)
		if err != nil {
			return nil, 0, err
		}
		where += ` AND date >= ? AND date < ?`
		args = append(args, fmtDate(start), fmtDate(end))
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, category_id, created_by, description, amount_cents, date, recurring_id, created_at, updated_at
		 FROM expenses WHERE `+where+` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpenseRows(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, total, rows.Err()
}

func (r *Repository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category_id = ?, description = ?, amount_cents = ?, date = ?, updated_at = ?
		 WHERE id = ? AND family_id = ?`,
		e.CategoryID, e.Description, e.Amount.Cents, fmtDate(e.Date), fmtTime(time.Now()),
		e.ID, e.FamilyID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteExpense(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

type expenseScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row *sql.Row) (*core.Expense, error) {
	e, err := scanExpenseFrom(row)
	if err != nil {
		return nil, notFoundOr(err, "get expense")
	}
	return e, nil
}

func scanExpenseRows(rows *sql.Rows) (*core.Expense, error) {
	e, err := scanExpenseFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	return e, nil
}

func scanExpenseFrom(s expenseScanner) (*core.Expense, error) {
	var e core.Expense
	var date, createdAt, updatedAt string
	var recurringID sql.NullString
	err := s.Scan(&e.ID, &e.FamilyID, &e.CategoryID, &e.CreatedBy, &e.Description,
		&e.Amount.Cents, &date, &recurringID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Date = parseDate(date)
	e.RecurringID = recurringID.String
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}
