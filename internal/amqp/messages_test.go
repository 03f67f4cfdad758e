package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogExportMessage(t *testing.T) {
	msg := NewLogExportMessage(ActionCreated, "uid-1", "log-1")

	assert.Equal(t, ActionCreated, msg.Action)
	assert.Equal(t, "uid-1", msg.UID)
	assert.Equal(t, "log-1", msg.LogID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestLogExportMessageRoundTrip(t *testing.T) {
	msg := NewLogExportMessage(ActionUpdated, "uid-2", "log-2")
	msg.Amount = 12.5
	msg.Category = "Groceries"

	data, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := LogExportMessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, msg.Action, got.Action)
	assert.Equal(t, msg.UID, got.UID)
	assert.Equal(t, msg.LogID, got.LogID)
	assert.Equal(t, msg.Amount, got.Amount)
	assert.Equal(t, msg.Category, got.Category)
}

func TestLogExportMessageFromJSONInvalid(t *testing.T) {
	_, err := LogExportMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
