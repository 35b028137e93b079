package core

import "math"

// Report shapes are pure functions of stored expense and budget rows for a
// month range; nothing here is cached or incrementally maintained.
type (
	CategorySpend struct {
		CategoryID string `json:"categoryId"`
		Name       string `json:"name"`
		Spent      Money  `json:"spent"`
	}

	MemberSpending struct {
		UserID         string          `json:"userId"`
		Name           string          `json:"name"`
		Spent          Money           `json:"spent"`
		PercentOfTotal float64         `json:"percentOfTotal"`
		TopCategories  []CategorySpend `json:"topCategories"`
	}

	MemberSpendingReport struct {
		Month   string           `json:"month"`
		Total   Money            `json:"total"`
		Members []MemberSpending `json:"members"`
	}

	BudgetUtilization struct {
		CategoryID  string  `json:"categoryId"`
		Name        string  `json:"name"`
		Budgeted    Money   `json:"budgeted"`
		Spent       Money   `json:"spent"`
		PercentUsed float64 `json:"percentUsed"`
	}

	BudgetUtilizationReport struct {
		Month      string              `json:"month"`
		Categories []BudgetUtilization `json:"categories"`
	}

	CategorySplit struct {
		CategoryID     string  `json:"categoryId"`
		Name           string  `json:"name"`
		Spent          Money   `json:"spent"`
		PercentOfTotal float64 `json:"percentOfTotal"`
	}

	CategorySplitReport struct {
		Month      string          `json:"month"`
		Total      Money           `json:"total"`
		Categories []CategorySplit `json:"categories"`
	}

	DailySpending struct {
		Date  string `json:"date"`
		Total Money  `json:"total"`
	}

	MonthlyTotal struct {
		Month string `json:"month"`
		Total Money  `json:"total"`
	}
)

// Percent returns part/whole as a percentage rounded to one decimal.
// A zero whole yields 0, never a division by zero.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
