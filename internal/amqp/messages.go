package amqp

import (
	"encoding/json"
	"time"
)

// Actions recorded in export messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LogExportMessage describes one spend-log mutation for the export worker.
// It carries the full entry data so the worker never has to read the store.
type LogExportMessage struct {
	Action    string    `json:"action"`
	UID       string    `json:"uid"`
	LogID     string    `json:"logId"`
	Amount    float64   `json:"amount,omitempty"`
	Category  string    `json:"category,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLogExportMessage creates an export message stamped with the current time.
func NewLogExportMessage(action, uid, logID string) *LogExportMessage {
	return &LogExportMessage{
		Action:    action,
		UID:       uid,
		LogID:     logID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LogExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LogExportMessageFromJSON creates a message from JSON bytes.
func LogExportMessageFromJSON(data []byte) (*LogExportMessage, error) {
	var msg LogExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
