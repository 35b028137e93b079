package services

import (
	"context"
	"testing"
	"time"

	"budgety/internal/core"
)

func (f *fixture) addMember(t *testing.T, name, email string) string {
	t.Helper()
	ctx := context.Background()
	u := core.User{Email: email, Name: name, PasswordHash: "x"}
	if err := f.store.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := f.store.AddMember(ctx, f.familyID, u.ID, core.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return u.ID
}

func (f *fixture) addExpense(t *testing.T, userID, categoryID string, cents int64, day time.Time) {
	t.Helper()
	e := core.Expense{
		FamilyID:    f.familyID,
		CategoryID:  categoryID,
		CreatedBy:   userID,
		Description: "test expense",
		Amount:      core.Money{Cents: cents},
		Date:        day,
	}
	if err := f.store.CreateExpense(context.Background(), &e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
}

func (f *fixture) addCategory(t *testing.T, name string) string {
	t.Helper()
	c := core.Category{FamilyID: f.familyID, Name: name}
	if err := f.store.CreateCategory(context.Background(), &c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c.ID
}

func TestMemberSpendingReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.addMember(t, "Bob", "bob@example.com")

	f.addExpense(t, f.userID, f.catID, 7500, date(2025, time.May, 3))
	f.addExpense(t, bob, f.catID, 2500, date(2025, time.May, 10))
	f.addExpense(t, bob, f.catID, 9999, date(2025, time.June, 1)) // outside month

	svc := NewReportService(f.store)
	report, err := svc.MemberSpending(ctx, f.familyID, "2025-05", 3)
	if err != nil {
		t.Fatalf("MemberSpending: %v", err)
	}

	if report.Total.Cents != 10000 {
		t.Errorf("total = %d, want 10000", report.Total.Cents)
	}
	if len(report.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(report.Members))
	}
	// Ordered by spend descending.
	if report.Members[0].Name != "Anna" || report.Members[0].Spent.Cents != 7500 {
		t.Errorf("top member = %s/%d, want Anna/7500", report.Members[0].Name, report.Members[0].Spent.Cents)
	}
	if report.Members[0].PercentOfTotal != 75.0 {
		t.Errorf("Anna percent = %v, want 75.0", report.Members[0].PercentOfTotal)
	}
	if report.Members[1].PercentOfTotal != 25.0 {
		t.Errorf("Bob percent = %v, want 25.0", report.Members[1].PercentOfTotal)
	}
	if len(report.Members[0].TopCategories) != 1 || report.Members[0].TopCategories[0].Spent.Cents != 7500 {
		t.Errorf("Anna top categories = %+v, want one Groceries entry of 7500", report.Members[0].TopCategories)
	}
}

func TestBudgetUtilizationReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rent := f.addCategory(t, "Rent")

	budget := core.Budget{FamilyID: f.familyID, CategoryID: f.catID, Month: "2025-05", Amount: core.Money{Cents: 40000}, CreatedBy: f.userID}
	if err := f.store.CreateBudget(ctx, &budget); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	overBudget := core.Budget{FamilyID: f.familyID, CategoryID: rent, Month: "2025-05", Amount: core.Money{Cents: 10000}, CreatedBy: f.userID}
	if err := f.store.CreateBudget(ctx, &overBudget); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	f.addExpense(t, f.userID, f.catID, 10000, date(2025, time.May, 2))
	f.addExpense(t, f.userID, rent, 15000, date(2025, time.May, 5))

	svc := NewReportService(f.store)
	report, err := svc.BudgetUtilization(ctx, f.familyID, "2025-05")
	if err != nil {
		t.Fatalf("BudgetUtilization: %v", err)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(report.Categories))
	}

	byName := map[string]core.BudgetUtilization{}
	for _, c := range report.Categories {
		byName[c.Name] = c
	}
	if got := byName["Groceries"].PercentUsed; got != 25.0 {
		t.Errorf("Groceries percent used = %v, want 25.0", got)
	}
	if got := byName["Rent"].PercentUsed; got != 150.0 {
		t.Errorf("Rent percent used = %v, want 150.0 (overspend reported, not capped)", got)
	}
}

func TestCategorySplitPercentages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	travel := f.addCategory(t, "Travel")

	f.addExpense(t, f.userID, f.catID, 3333, date(2025, time.May, 1))
	f.addExpense(t, f.userID, travel, 6667, date(2025, time.May, 2))

	svc := NewReportService(f.store)
	report, err := svc.CategorySplit(ctx, f.familyID, "2025-05")
	if err != nil {
		t.Fatalf("CategorySplit: %v", err)
	}
	if report.Total.Cents != 10000 {
		t.Errorf("total = %d, want 10000", report.Total.Cents)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(report.Categories))
	}
	if report.Categories[0].PercentOfTotal != 66.7 {
		t.Errorf("largest category percent = %v, want 66.7", report.Categories[0].PercentOfTotal)
	}
	if report.Categories[1].PercentOfTotal != 33.3 {
		t.Errorf("smallest category percent = %v, want 33.3", report.Categories[1].PercentOfTotal)
	}
}

func TestDailySpendingOmitsEmptyDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addExpense(t, f.userID, f.catID, 500, date(2025, time.May, 1))
	f.addExpense(t, f.userID, f.catID, 700, date(2025, time.May, 1))
	f.addExpense(t, f.userID, f.catID, 300, date(2025, time.May, 15))

	svc := NewReportService(f.store)
	days, err := svc.DailySpending(ctx, f.familyID, "2025-05")
	if err != nil {
		t.Fatalf("DailySpending: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].Date != "2025-05-01" || days[0].Total.Cents != 1200 {
		t.Errorf("first day = %s/%d, want 2025-05-01/1200", days[0].Date, days[0].Total.Cents)
	}
}

func TestMonthlyTrendZeroFillsGaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addExpense(t, f.userID, f.catID, 1000, date(2025, time.March, 10))
	f.addExpense(t, f.userID, f.catID, 2000, date(2025, time.May, 10))

	svc := NewReportService(f.store)
	// now is May 31: AddDate pitfalls around short months must not shift the
	// window.
	trend, err := svc.MonthlyTrend(ctx, f.familyID, 3, date(2025, time.May, 31))
	if err != nil {
		t.Fatalf("MonthlyTrend: %v", err)
	}
	if len(trend) != 3 {
		t.Fatalf("trend length = %d, want 3", len(trend))
	}
	want := []core.MonthlyTotal{
		{Month: "2025-03", Total: core.Money{Cents: 1000}},
		{Month: "2025-04", Total: core.Money{Cents: 0}},
		{Month: "2025-05", Total: core.Money{Cents: 2000}},
	}
	for i, w := range want {
		if trend[i].Month != w.Month || trend[i].Total.Cents != w.Total.Cents {
			t.Errorf("trend[%d] = %s/%d, want %s/%d",
				i, trend[i].Month, trend[i].Total.Cents, w.Month, w.Total.Cents)
		}
	}
}

func TestTopExpensesLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, cents := range []int64{100, 900, 500, 300} {
		f.addExpense(t, f.userID, f.catID, cents, date(2025, time.May, 10))
	}

	svc := NewReportService(f.store)
	top, err := svc.TopExpenses(ctx, f.familyID, "2025-05", 2)
	if err != nil {
		t.Fatalf("TopExpenses: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top = %d, want 2", len(top))
	}
	if top[0].Amount.Cents != 900 || top[1].Amount.Cents != 500 {
		t.Errorf("top amounts = %d,%d, want 900,500", top[0].Amount.Cents, top[1].Amount.Cents)
	}
}
