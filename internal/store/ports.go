package store

import (
	"context"

	"pocketlog/internal/core"
)

// Ports for record store adapters. Every method is a single atomic operation
// against one user document; implementations return core.ErrNotFound when no
// user (or user/log pair) matches and wrap driver failures with core.ErrStorage.
type (
	// Directory finds and creates users keyed by their external identity.
	Directory interface {
		// UpsertUser refreshes the user's details, creating the document with
		// default settings and an empty log list when it does not exist yet.
		// Returns the resulting user.
		UpsertUser(ctx context.Context, details core.UserDetails) (*core.User, error)

		// FindUser returns the user with the given external id.
		FindUser(ctx context.Context, externalID string) (*core.User, error)
	}

	// LogStore mutates the embedded log list of a single user.
	LogStore interface {
		// AppendLog appends the entry to the user's log list, assigning the
		// entry a store-generated id, and returns the updated user.
		AppendLog(ctx context.Context, externalID string, entry core.LogEntry) (*core.User, error)

		// UpdateLog mutates amount, category and note of the log identified by
		// (externalID, logID). The pair must match; a valid log id under a
		// different user does not.
		UpdateLog(ctx context.Context, externalID, logID string, in core.LogInput) (*core.User, error)

		// RemoveLog removes the log with logID from the user's list. Removing
		// a log id that no longer exists under a present user succeeds
		// (zero-element removal), which makes the operation idempotent.
		RemoveLog(ctx context.Context, externalID, logID string) (*core.User, error)
	}
)
