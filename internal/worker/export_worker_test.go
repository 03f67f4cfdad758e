package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/amqp"
	"pocketlog/internal/sheets"
)

type fakeWriter struct {
	rows []sheets.ActivityRow
	err  error
}

func (f *fakeWriter) Append(_ context.Context, row sheets.ActivityRow) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "Activity!A2:G2", nil
}

func TestHandleExportMessage(t *testing.T) {
	writer := &fakeWriter{}
	w := NewExportWorker(writer)

	msg := amqp.NewLogExportMessage(amqp.ActionCreated, "uid-1", "log-1")
	msg.Amount = 12.5
	msg.Category = "Groceries"
	msg.Note = "weekly"
	msg.Timestamp = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := w.HandleExportMessage(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, writer.rows, 1)
	row := writer.rows[0]
	assert.Equal(t, "2025-03-01T12:00:00Z", row.Timestamp)
	assert.Equal(t, amqp.ActionCreated, row.Action)
	assert.Equal(t, "uid-1", row.UID)
	assert.Equal(t, "log-1", row.LogID)
	assert.Equal(t, 12.5, row.Amount)
	assert.Equal(t, "Groceries", row.Category)
	assert.Equal(t, "weekly", row.Note)
}

func TestHandleExportMessage_WriterFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("sheet unavailable")}
	w := NewExportWorker(writer)

	err := w.HandleExportMessage(context.Background(), amqp.NewLogExportMessage(amqp.ActionDeleted, "uid-1", "log-1"))
	assert.Error(t, err)
}
