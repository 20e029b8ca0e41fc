package amqp

import (
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	msg := NewExpenseAdded("alice", "Food", "lunch", 1250, ts)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := MessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeExpenseAdded || got.Username != "alice" || got.AmountCents != 1250 {
		t.Errorf("round trip: %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
}

func TestBudgetAlertMessage(t *testing.T) {
	msg := NewBudgetAlert("alice", "Food", 12000, 10000)
	if msg.Type != TypeBudgetAlert {
		t.Errorf("type = %s", msg.Type)
	}
	if msg.AmountCents != 12000 || msg.LimitCents != 10000 {
		t.Errorf("amounts = %d/%d", msg.AmountCents, msg.LimitCents)
	}
}

func TestMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := MessageFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
