package storage

import (
	"context"
	"fmt"
	"time"

	"budgety/internal/core"
)

// Aggregation rows feeding the report service. All sums are over raw stored
// cents; nothing here rounds.
type (
	MemberTotal struct {
		UserID string
		Name   string
		Cents  int64
	}

	MemberCategoryTotal struct {
		UserID       string
		CategoryID   string
		CategoryName string
		Cents        int64
	}

	CategoryTotal struct {
		CategoryID string
		Name       string
		Cents      int64
	}

	DayTotal struct {
		Date  string
		Cents int64
	}

	BudgetSpend struct {
		CategoryID string
		Name       string
		Budgeted   int64
		Spent      int64
	}
)

func (r *Repository) SumByMember(ctx context.Context, familyID string, start, end time.Time) ([]MemberTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.created_by, u.name, SUM(e.amount_cents)
		 FROM expenses e
		 JOIN users u ON u.id = e.created_by
		 WHERE e.family_id = ? AND e.date >= ? AND e.date < ?
		 GROUP BY e.created_by, u.name
		 ORDER BY SUM(e.amount_cents) DESC`,
		familyID, fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("sum by member: %w", err)
	}
	defer rows.Close()

	var totals []MemberTotal
	for rows.Next() {
		var t MemberTotal
		if err := rows.Scan(&t.UserID, &t.Name, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan member total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *Repository) SumByMemberCategory(ctx context.Context, familyID string, start, end time.Time) ([]MemberCategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.created_by, e.category_id, c.name, SUM(e.amount_cents)
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.family_id = ? AND e.date >= ? AND e.date < ?
		 GROUP BY e.created_by, e.category_id, c.name
		 ORDER BY e.created_by, SUM(e.amount_cents) DESC`,
		familyID, fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("sum by member and category: %w", err)
	}
	defer rows.Close()

	var totals []MemberCategoryTotal
	for rows.Next() {
		var t MemberCategoryTotal
		if err := rows.Scan(&t.UserID, &t.CategoryID, &t.CategoryName, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan member category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *Repository) SumByCategory(ctx context.Context, familyID string, start, end time.Time) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.category_id, c.name, SUM(e.amount_cents)
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.family_id = ? AND e.date >= ? AND e.date < ?
		 GROUP BY e.category_id, c.name
		 ORDER BY SUM(e.amount_cents) DESC`,
		familyID, fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.Name, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *Repository) SumByDay(ctx context.Context, familyID string, start, end time.Time) ([]DayTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, SUM(amount_cents)
		 FROM expenses
		 WHERE family_id = ? AND date >= ? AND date < ?
		 GROUP BY date
		 ORDER BY date`,
		familyID, fmtDate(start), fmtDate(end))
	if err != nil {
		return nil, fmt.Errorf("sum by day: %w", err)
	}
	defer rows.Close()

	var totals []DayTotal
	for rows.Next() {
		var t DayTotal
		if err := rows.Scan(&t.Date, &t.Cents); err != nil {
			return nil, fmt.Errorf("scan day total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SumMonth returns the family's total spend within [start, end).
func (r *Repository) SumMonth(ctx context.Context, familyID string, start, end time.Time) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE family_id = ? AND date >= ? AND date < ?`,
		familyID, fmtDate(start), fmtDate(end)).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum month: %w", err)
	}
	return cents, nil
}

func (r *Repository) TopExpenses(ctx context.Context, familyID string, start, end time.Time, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, category_id, created_by, description, amount_cents, date, recurring_id, created_at, updated_at
		 FROM expenses
		 WHERE family_id = ? AND date >= ? AND date < ?
		 ORDER BY amount_cents DESC, date
		 LIMIT ?`,
		familyID, fmtDate(start), fmtDate(end), limit)
	if err != nil {
		return nil, fmt.Errorf("top expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpenseRows(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// BudgetsWithSpend joins a month's budgets with that month's per-category
// spend. Categories without a budget row are omitted; a budgeted category
// with no expenses reports zero spend.
func (r *Repository) BudgetsWithSpend(ctx context.Context, familyID, month string, start, end time.Time) ([]BudgetSpend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.category_id, c.name, b.amount_cents,
		        COALESCE((SELECT SUM(e.amount_cents) FROM expenses e
		                  WHERE e.family_id = b.family_id AND e.category_id = b.category_id
		                    AND e.date >= ? AND e.date < ?), 0)
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.family_id = ? AND b.month = ?
		 ORDER BY c.name`,
		fmtDate(start), fmtDate(end), familyID, month)
	if err != nil {
		return nil, fmt.Errorf("budgets with spend: %w", err)
	}
	defer rows.Close()

	var result []BudgetSpend
	for rows.Next() {
		var bs BudgetSpend
		if err := rows.Scan(&bs.CategoryID, &bs.Name, &bs.Budgeted, &bs.Spent); err != nil {
			return nil, fmt.Errorf("scan budget spend: %w", err)
		}
		result = append(result, bs)
	}
	return result, rows.Err()
}
