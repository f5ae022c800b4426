package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage tells the export worker that a record was added.
// It carries only the kind and record ID; the worker fetches the full
// record from storage.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event message stamped with the current time.
func NewLedgerEventMessage(kind, recordID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
