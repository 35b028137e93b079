package core

import (
	"testing"
	"time"
)

func TestRoleOrdering(t *testing.T) {
	if !RoleAdmin.HasAtLeast(RoleMember) {
		t.Error("ADMIN should satisfy MEMBER requirement")
	}
	if !RoleAdmin.HasAtLeast(RoleAdmin) {
		t.Error("ADMIN should satisfy ADMIN requirement")
	}
	if RoleMember.HasAtLeast(RoleAdmin) {
		t.Error("MEMBER should not satisfy ADMIN requirement")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("admin"); err != nil || r != RoleAdmin {
		t.Errorf("ParseRole(admin) = %v, %v", r, err)
	}
	if r, err := ParseRole("MEMBER"); err != nil || r != RoleMember {
		t.Errorf("ParseRole(MEMBER) = %v, %v", r, err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Error("ParseRole(owner) should fail")
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	valid := RecurringExpense{
		CategoryID:  "cat-1",
		Description: "Rent",
		Amount:      Money{Cents: 120000},
		Frequency:   Monthly,
		StartDate:   date(2026, time.January, 1),
	}

	tests := []struct {
		name    string
		mutate  func(*RecurringExpense)
		wantErr bool
	}{
		{name: "valid", mutate: func(*RecurringExpense) {}},
		{name: "zero amount", mutate: func(re *RecurringExpense) { re.Amount.Cents = 0 }, wantErr: true},
		{name: "empty description", mutate: func(re *RecurringExpense) { re.Description = "  " }, wantErr: true},
		{name: "bad frequency", mutate: func(re *RecurringExpense) { re.Frequency = "FORTNIGHTLY" }, wantErr: true},
		{name: "end before start", mutate: func(re *RecurringExpense) {
			end := date(2025, time.December, 31)
			re.EndDate = &end
		}, wantErr: true},
		{name: "end equals start", mutate: func(re *RecurringExpense) {
			end := valid.StartDate
			re.EndDate = &end
		}},
		{name: "missing category", mutate: func(re *RecurringExpense) { re.CategoryID = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := valid
			tt.mutate(&re)
			err := re.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-02")
	if err != nil {
		t.Fatalf("MonthRange: %v", err)
	}
	if !start.Equal(date(2026, time.February, 1)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(date(2026, time.March, 1)) {
		t.Errorf("end = %s", end)
	}
	if _, _, err := MonthRange("2026-13"); err == nil {
		t.Error("MonthRange(2026-13) should fail")
	}
	if _, _, err := MonthRange("march"); err == nil {
		t.Error("MonthRange(march) should fail")
	}
}
