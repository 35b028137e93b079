package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Role gates what a family member may do. The ordering is explicit:
// MEMBER < ADMIN, compared with HasAtLeast.
type Role int

const (
	RoleMember Role = iota + 1
	RoleAdmin
)

type (
	Frequency string

	User struct {
		ID           string
		Email        string
		Name         string
		PasswordHash string
		CreatedAt    time.Time
	}

	Family struct {
		ID        string
		Name      string
		CreatedBy string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	FamilyMember struct {
		FamilyID string
		UserID   string
		Name     string
		Email    string
		Role     Role
		JoinedAt time.Time
	}

	Category struct {
		ID        string
		FamilyID  string
		Name      string
		CreatedAt time.Time
	}

	// Budget caps spending for one category in one calendar month ("2026-03").
	Budget struct {
		ID         string
		FamilyID   string
		CategoryID string
		Month      string
		Amount     Money
		CreatedBy  string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Expense is a financial fact. Date is the economic date of the charge,
	// not the creation time; RecurringID is set when the recurring engine
	// materialized it from a template.
	Expense struct {
		ID          string
		FamilyID    string
		CategoryID  string
		CreatedBy   string
		Description string
		Amount      Money
		Date        time.Time
		RecurringID string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// RecurringExpense is a template for a repeating charge. NextDueDate is
	// the forward-only cursor the processing pass advances; it never rewinds.
	RecurringExpense struct {
		ID          string
		FamilyID    string
		CategoryID  string
		CreatedBy   string
		Description string
		Amount      Money
		Frequency   Frequency
		StartDate   time.Time
		EndDate     *time.Time
		NextDueDate time.Time
		IsActive    bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Notification struct {
		ID        string
		FamilyID  string
		Type      string
		Message   string
		ActorID   string
		ExpenseID string
		CreatedAt time.Time
	}
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidRole      = errors.New("invalid role")
)

const DateLayout = "2006-01-02"

const MonthLayout = "2006-01"

// ParseDate parses an ISO civil date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// MonthRange returns the half-open range [first-of-month, first-of-next-month)
// for a "YYYY-MM" month.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	return t, t.AddDate(0, 1, 0), nil
}

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", ErrInvalidFrequency
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MEMBER":
		return RoleMember, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return 0, ErrInvalidRole
	}
}

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "MEMBER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// HasAtLeast reports whether r grants at least the permissions of min.
func (r Role) HasAtLeast(min Role) bool {
	return r >= min
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.CategoryID == "" {
		return fmt.Errorf("%w: missing category", ErrValidation)
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(re.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(re.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if re.StartDate.IsZero() {
		return fmt.Errorf("%w: invalid start date", ErrValidation)
	}
	if re.EndDate != nil && re.EndDate.Before(re.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	switch re.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return ErrInvalidFrequency
	}
	if re.CategoryID == "" {
		return fmt.Errorf("%w: missing category", ErrValidation)
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if _, _, err := MonthRange(b.Month); err != nil {
		return err
	}
	if b.CategoryID == "" {
		return fmt.Errorf("%w: missing category", ErrValidation)
	}
	return nil
}

func (f Family) Validate() error {
	if len(strings.TrimSpace(f.Name)) == 0 {
		return ErrEmptyName
	}
	if len(f.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrValidation)
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrValidation)
	}
	return nil
}
