package services

import (
	"context"
	"fmt"
	"time"

	"budgety/internal/core"
	"budgety/internal/storage"
)

// ReportService assembles monthly reports from the storage aggregation
// queries. All percentages are computed here, over raw cents, so the rounding
// rules live in one place (core.Percent).
type ReportService struct {
	store *storage.Repository
}

func NewReportService(store *storage.Repository) *ReportService {
	return &ReportService{store: store}
}

// MemberSpending breaks a month's spend down by family member, each with
// their topN categories by spend.
func (s *ReportService) MemberSpending(ctx context.Context, familyID, month string, topN int) (*core.MemberSpendingReport, error) {
	start, end, err := core.MonthRange(month)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 3
	}

	memberTotals, err := s.store.SumByMember(ctx, familyID, start, end)
	if err != nil {
		return nil, err
	}
	categoryTotals, err := s.store.SumByMemberCategory(ctx, familyID, start, end)
	if err != nil {
		return nil, err
	}

	// Rows come back ordered per member by spend descending, so the first
	// topN per user are the top categories.
	topByUser := make(map[string][]core.CategorySpend)
	for _, ct := range categoryTotals {
		if len(topByUser[ct.UserID]) >= topN {
			continue
		}
		topByUser[ct.UserID] = append(topByUser[ct.UserID], core.CategorySpend{
			CategoryID: ct.CategoryID,
			Name:       ct.CategoryName,
			Spent:      core.Money{Cents: ct.Cents},
		})
	}

	var total int64
	for _, mt := range memberTotals {
		total += mt.Cents
	}

	report := &core.MemberSpendingReport{
		Month:   month,
		Total:   core.Money{Cents: total},
		Members: make([]core.MemberSpending, 0, len(memberTotals)),
	}
	for _, mt := range memberTotals {
		report.Members = append(report.Members, core.MemberSpending{
			UserID:         mt.UserID,
			Name:           mt.Name,
			Spent:          core.Money{Cents: mt.Cents},
			PercentOfTotal: core.Percent(mt.Cents, total),
			TopCategories:  topByUser[mt.UserID],
		})
	}
	return report, nil
}

// BudgetUtilization reports, for each budgeted category, how much of the
// monthly budget the family has spent. PercentUsed can exceed 100.
func (s *ReportService) BudgetUtilization(ctx context.Context, familyID, month string) (*core.BudgetUtilizationReport, error) {
	start, end, err := core.MonthRange(month)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.BudgetsWithSpend(ctx, familyID, month, start, end)
	if err != nil {
		return nil, err
	}

	report := &core.BudgetUtilizationReport{
		Month:      month,
		Categories: make([]core.BudgetUtilization, 0, len(rows)),
	}
	for _, row := range rows {
		report.Categories = append(report.Categories, core.BudgetUtilization{
			CategoryID:  row.CategoryID,
			Name:        row.Name,
			Budgeted:    core.Money{Cents: row.Budgeted},
			Spent:       core.Money{Cents: row.Spent},
			PercentUsed: core.Percent(row.Spent, row.Budgeted),
		})
	}
	return report, nil
}

// CategorySplit breaks a month's total down by category.
func (s *ReportService) CategorySplit(ctx context.Context, familyID, month string) (*core.CategorySplitReport, error) {
	start, end, err := core.MonthRange(month)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.SumByCategory(ctx, familyID, start, end)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, ct := range totals {
		total += ct.Cents
	}

	report := &core.CategorySplitReport{
		Month:      month,
		Total:      core.Money{Cents: total},
		Categories: make([]core.CategorySplit, 0, len(totals)),
	}
	for _, ct := range totals {
		report.Categories = append(report.Categories, core.CategorySplit{
			CategoryID:     ct.CategoryID,
			Name:           ct.Name,
			Spent:          core.Money{Cents: ct.Cents},
			PercentOfTotal: core.Percent(ct.Cents, total),
		})
	}
	return report, nil
}

// DailySpending lists per-day totals for the month. Days with no expenses are
// omitted rather than zero-filled.
func (s *ReportService) DailySpending(ctx context.Context, familyID, month string) ([]core.DailySpending, error) {
	start, end, err := core.MonthRange(month)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.SumByDay(ctx, familyID, start, end)
	if err != nil {
		return nil, err
	}

	days := make([]core.DailySpending, 0, len(totals))
	for _, dt := range totals {
		days = append(days, core.DailySpending{
			Date:  dt.Date,
			Total: core.Money{Cents: dt.Cents},
		})
	}
	return days, nil
}

// MonthlyTrend returns one total per month for the last `months` months,
// oldest first, ending with the month containing now. Months without spend
// appear with a zero total so the series has no gaps.
func (s *ReportService) MonthlyTrend(ctx context.Context, familyID string, months int, now time.Time) ([]core.MonthlyTotal, error) {
	if months <= 0 || months > 60 {
		return nil, fmt.Errorf("%w: months must be between 1 and 60", core.ErrInvalidMonth)
	}

	// Anchor on the first of the current month; AddDate on day 29-31 would
	// skip short months.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	trend := make([]core.MonthlyTotal, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := anchor.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		cents, err := s.store.SumMonth(ctx, familyID, start, end)
		if err != nil {
			return nil, err
		}
		trend = append(trend, core.MonthlyTotal{
			Month: start.Format(core.MonthLayout),
			Total: core.Money{Cents: cents},
		})
	}
	return trend, nil
}

// TopExpenses returns a month's largest expenses, biggest first.
func (s *ReportService) TopExpenses(ctx context.Context, familyID, month string, limit int) ([]core.Expense, error) {
	start, end, err := core.MonthRange(month)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.TopExpenses(ctx, familyID, start, end, limit)
}
