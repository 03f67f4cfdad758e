// Package worker consumes log export messages and appends them to the
// activity spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pocketlog/internal/amqp"
	"pocketlog/internal/sheets"
)

// ExportWorker turns one export message into one activity row.
type ExportWorker struct {
	writer sheets.ActivityWriter
}

func NewExportWorker(writer sheets.ActivityWriter) *ExportWorker {
	return &ExportWorker{writer: writer}
}

// HandleExportMessage processes a single log export message.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.LogExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"action", msg.Action,
		"uid", msg.UID,
		"log_id", msg.LogID)

	row := sheets.ActivityRow{
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
		Action:    msg.Action,
		UID:       msg.UID,
		LogID:     msg.LogID,
		Amount:    msg.Amount,
		Category:  msg.Category,
		Note:      msg.Note,
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append activity row: %w", err)
	}

	slog.InfoContext(ctx, "Exported log entry",
		"action", msg.Action,
		"uid", msg.UID,
		"log_id", msg.LogID,
		"range", ref)

	return nil
}
