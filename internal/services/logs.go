package services

import (
	"context"
	"fmt"
	"time"

	"pocketlog/internal/amqp"
	"pocketlog/internal/core"
	applog "pocketlog/internal/log"
	"pocketlog/internal/store"
)

// LogService handles the spend-log list embedded in a user document. Each
// mutation also publishes an export message; publish failures are logged and
// never fail the request.
type LogService struct {
	directory  store.Directory
	logs       store.LogStore
	amqpClient *amqp.Client
}

// NewLogService creates a LogService. amqpClient may be nil, in which case
// export publishing is skipped.
func NewLogService(directory store.Directory, logs store.LogStore, amqpClient *amqp.Client) *LogService {
	return &LogService{
		directory:  directory,
		logs:       logs,
		amqpClient: amqpClient,
	}
}

// List returns the user's log entries in insertion order together with the
// spend limit from their settings.
func (s *LogService) List(ctx context.Context, externalID string) ([]core.LogEntry, float64, error) {
	if externalID == "" {
		return nil, 0, core.ErrMissingExternalID
	}

	user, err := s.directory.FindUser(ctx, externalID)
	if err != nil {
		return nil, 0, fmt.Errorf("find user: %w", err)
	}

	return user.Logs, user.Settings.SpendLimit, nil
}

// Add appends a new log entry and returns the updated user.
func (s *LogService) Add(ctx context.Context, externalID string, in core.LogInput) (*core.User, error) {
	if externalID == "" {
		return nil, core.ErrMissingExternalID
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	entry := core.LogEntry{
		Amount:    in.Amount,
		Category:  in.Category,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}

	user, err := s.logs.AppendLog(ctx, externalID, entry)
	if err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}

	// The appended entry is the last element of the returned list; the store
	// assigned its id.
	if n := len(user.Logs); n > 0 {
		added := user.Logs[n-1]
		s.publishExport(ctx, amqp.ActionCreated, externalID, added)
	}

	return user, nil
}

// Update mutates amount, category and note of one log entry and returns the
// updated user.
func (s *LogService) Update(ctx context.Context, externalID, logID string, in core.LogInput) (*core.User, error) {
	if externalID == "" {
		return nil, core.ErrMissingExternalID
	}
	if logID == "" {
		return nil, core.ErrMissingLogID
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.logs.UpdateLog(ctx, externalID, logID, in)
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}

	if updated := user.FindLog(logID); updated != nil {
		s.publishExport(ctx, amqp.ActionUpdated, externalID, *updated)
	}

	return user, nil
}

// Delete removes one log entry and returns the updated user. Deleting an id
// that is already gone succeeds as long as the user exists.
func (s *LogService) Delete(ctx context.Context, externalID, logID string) (*core.User, error) {
	if externalID == "" {
		return nil, core.ErrMissingExternalID
	}
	if logID == "" {
		return nil, core.ErrMissingLogID
	}

	user, err := s.logs.RemoveLog(ctx, externalID, logID)
	if err != nil {
		return nil, fmt.Errorf("remove log: %w", err)
	}

	s.publishExport(ctx, amqp.ActionDeleted, externalID, core.LogEntry{ID: logID})

	return user, nil
}

func (s *LogService) publishExport(ctx context.Context, action, externalID string, entry core.LogEntry) {
	if s.amqpClient == nil {
		return
	}

	msg := amqp.NewLogExportMessage(action, externalID, entry.ID)
	msg.Amount = entry.Amount
	msg.Category = entry.Category
	msg.Note = entry.Note
	msg.CreatedAt = entry.CreatedAt

	if err := s.amqpClient.PublishLogExport(ctx, msg); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to publish export message",
			applog.FieldAction, action,
			applog.FieldUID, externalID,
			applog.FieldLogID, entry.ID,
			applog.FieldError, err)
		// Don't fail the request; the mutation is already stored.
	}
}
