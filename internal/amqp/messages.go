package amqp

import (
	"encoding/json"
	"time"
)

// Message types published on the expense event stream.
const (
	TypeExpenseAdded = "expense.added"
	TypeBudgetAlert  = "budget.alert"
)

// Message is the JSON envelope for all expense events. It carries the full
// record so consumers never need access to the publisher's storage.
//
// For expense.added, AmountCents is the record amount. For budget.alert,
// AmountCents is the current-month total and LimitCents the budget limit.
type Message struct {
	Type        string    `json:"type"`
	Username    string    `json:"username"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	LimitCents  int64     `json:"limit_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseAdded builds the event for a freshly appended record.
func NewExpenseAdded(username, category, description string, amountCents int64, ts time.Time) *Message {
	return &Message{
		Type:        TypeExpenseAdded,
		Username:    username,
		Category:    category,
		Description: description,
		AmountCents: amountCents,
		Timestamp:   ts,
	}
}

// NewBudgetAlert builds the event for an exceeded monthly budget.
func NewBudgetAlert(username, category string, spentCents, limitCents int64) *Message {
	return &Message{
		Type:        TypeBudgetAlert,
		Username:    username,
		Category:    category,
		AmountCents: spentCents,
		LimitCents:  limitCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON creates a message from JSON bytes
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
