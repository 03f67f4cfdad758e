// Package sqlite implements the record store on SQLite with one row per
// user. The embedded document (details, settings, logs) is stored as a JSON
// column and every log mutation is a read-modify-write of that single row
// inside a transaction, which preserves the same per-user atomicity the
// document store gives for free.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pocketlog/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is a SQLite-backed record store.
type Repository struct {
	db *sql.DB
}

// docBody is the JSON document persisted in the doc column. Timestamps live
// in their own columns.
type docBody struct {
	Details  core.UserDetails  `json:"details"`
	Settings core.UserSettings `json:"settings"`
	Logs     []core.LogEntry   `json:"logs"`
}

// NewRepository opens (creating if needed) the database file and applies the
// embedded migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Opened SQLite record store", "path", dbPath)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertUser implements store.Directory.
func (r *Repository) UpsertUser(ctx context.Context, details core.UserDetails) (*core.User, error) {
	var out *core.User
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		body, createdAt, err := r.loadBody(ctx, tx, details.ExternalID)
		if errors.Is(err, core.ErrNotFound) {
			body = &docBody{
				Details:  details,
				Settings: core.UserSettings{SpendLimit: core.DefaultSpendLimit},
				Logs:     []core.LogEntry{},
			}
			doc, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshal document: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (external_id, email, doc, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				details.ExternalID, details.Email, string(doc), now, now)
			if err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
			out = toUser(body, now, now)
			return nil
		}
		if err != nil {
			return err
		}

		body.Details.Email = details.Email
		body.Details.FirstName = details.FirstName
		body.Details.LastName = details.LastName
		body.Details.AuthProvider = details.AuthProvider
		if err := r.saveBody(ctx, tx, details.ExternalID, body, now); err != nil {
			return err
		}
		out = toUser(body, createdAt, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindUser implements store.Directory.
func (r *Repository) FindUser(ctx context.Context, externalID string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT doc, created_at, updated_at FROM users WHERE external_id = ?`, externalID)

	var raw string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, core.StorageError("find user", err)
	}

	var body docBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, core.StorageError("decode document", err)
	}
	return toUser(&body, createdAt, updatedAt), nil
}

// AppendLog implements store.LogStore.
func (r *Repository) AppendLog(ctx context.Context, externalID string, entry core.LogEntry) (*core.User, error) {
	return r.mutate(ctx, externalID, func(body *docBody) error {
		entry.ID = uuid.NewString()
		body.Logs = append(body.Logs, entry)
		return nil
	})
}

// UpdateLog implements store.LogStore.
func (r *Repository) UpdateLog(ctx context.Context, externalID, logID string, in core.LogInput) (*core.User, error) {
	return r.mutate(ctx, externalID, func(body *docBody) error {
		for i := range body.Logs {
			if body.Logs[i].ID == logID {
				body.Logs[i].Amount = in.Amount
				body.Logs[i].Category = in.Category
				body.Logs[i].Note = in.Note
				return nil
			}
		}
		return core.ErrNotFound
	})
}

// RemoveLog implements store.LogStore. Removing an absent log id from an
// existing user is a successful no-op.
func (r *Repository) RemoveLog(ctx context.Context, externalID, logID string) (*core.User, error) {
	return r.mutate(ctx, externalID, func(body *docBody) error {
		for i := range body.Logs {
			if body.Logs[i].ID == logID {
				body.Logs = append(body.Logs[:i], body.Logs[i+1:]...)
				break
			}
		}
		return nil
	})
}

// mutate runs fn against the user's document inside a single-row transaction
// and persists the result.
func (r *Repository) mutate(ctx context.Context, externalID string, fn func(*docBody) error) (*core.User, error) {
	var out *core.User
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		body, createdAt, err := r.loadBody(ctx, tx, externalID)
		if err != nil {
			return err
		}
		if err := fn(body); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := r.saveBody(ctx, tx, externalID, body, now); err != nil {
			return err
		}
		out = toUser(body, createdAt, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StorageError("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.StorageError("commit transaction", err)
	}
	return nil
}

func (r *Repository) loadBody(ctx context.Context, tx *sql.Tx, externalID string) (*docBody, time.Time, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT doc, created_at FROM users WHERE external_id = ?`, externalID)

	var raw string
	var createdAt time.Time
	if err := row.Scan(&raw, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, core.ErrNotFound
		}
		return nil, time.Time{}, core.StorageError("load user", err)
	}

	var body docBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, time.Time{}, core.StorageError("decode document", err)
	}
	return &body, createdAt, nil
}

func (r *Repository) saveBody(ctx context.Context, tx *sql.Tx, externalID string, body *docBody, now time.Time) error {
	doc, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET doc = ?, email = ?, updated_at = ? WHERE external_id = ?`,
		string(doc), body.Details.Email, now, externalID)
	if err != nil {
		return core.StorageError("save user", err)
	}
	return nil
}

func toUser(body *docBody, createdAt, updatedAt time.Time) *core.User {
	logs := make([]core.LogEntry, len(body.Logs))
	copy(logs, body.Logs)
	return &core.User{
		Details:   body.Details,
		Settings:  body.Settings,
		Logs:      logs,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
