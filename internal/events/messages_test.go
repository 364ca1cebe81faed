package events

import (
	"testing"
)

func TestTransactionRecordedMessageRoundTrip(t *testing.T) {
	msg := NewTransactionRecordedMessage(42, "-99.9", "еда", "карта", "2024-05-01")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := TransactionRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if decoded.UserID != 42 || decoded.Amount != "-99.9" ||
		decoded.Category != "еда" || decoded.Account != "карта" ||
		decoded.Day != "2024-05-01" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestTransactionRecordedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionRecordedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}
