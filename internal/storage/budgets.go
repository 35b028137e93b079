package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

func (r *Repository) CreateBudget(ctx context.Context, b *core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, family_id, category_id, month, amount_cents, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.FamilyID, b.CategoryID, b.Month, b.Amount.Cents, b.CreatedBy,
		fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, familyID, id string) (*core.Budget, error) {
	var b core.Budget
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, category_id, month, amount_cents, created_by, created_at, updated_at
		 FROM budgets WHERE id = ? AND family_id = ?`, id, familyID).
		Scan(&b.ID, &b.FamilyID, &b.CategoryID, &b.Month, &b.Amount.Cents, &b.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFoundOr(err, "get budget")
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

// ListBudgets returns a family's budgets, optionally filtered to one month.
func (r *Repository) ListBudgets(ctx context.Context, familyID, month string) ([]core.Budget, error) {
	query := `SELECT id, family_id, category_id, month, amount_cents, created_by, created_at, updated_at
		 FROM budgets WHERE family_id = ?`
	args := []any{familyID}
	if month != "" {
		query += ` AND month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY month DESC, category_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		var createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.FamilyID, &b.CategoryID, &b.Month, &b.Amount.Cents,
			&b.CreatedBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CreatedAt = parseTime(createdAt)
		b.UpdatedAt = parseTime(updatedAt)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *Repository) UpdateBudgetAmount(ctx context.Context, familyID, id string, amount core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = ?, updated_at = ? WHERE id = ? AND family_id = ?`,
		amount.Cents, fmtTime(time.Now()), id, familyID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteBudget(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res)
}
