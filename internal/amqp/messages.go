package amqp

import (
	"encoding/json"
	"time"
)

// Event types carried on the family_events queue.
const (
	EventExpenseCreated        = "expense.created"
	EventRecurringMaterialized = "recurring.materialized"
	EventMemberAdded           = "member.added"
)

// Event is a family-scoped notification event. The notify-worker consumes
// these and materializes notification rows.
type Event struct {
	Type        string    `json:"type"`
	FamilyID    string    `json:"family_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	ExpenseID   string    `json:"expense_id,omitempty"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
