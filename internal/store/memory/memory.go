// Package memory provides an in-memory record store. It is the default
// backend for local development and the store handler tests run against.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocketlog/internal/core"
)

var errEmailTaken = errors.New("email already in use by another user")

// Store keeps user documents in a map keyed by external id, with a secondary
// email index standing in for the unique indexes the database backends carry.
// A single mutex per store stands in for the document-level atomicity a real
// document database provides; every operation copies on the way in and out.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*core.User
	emails map[string]string // email -> owning external id
}

func New() *Store {
	return &Store{
		users:  make(map[string]*core.User),
		emails: make(map[string]string),
	}
}

// UpsertUser implements store.Directory. One user per email: an upsert that
// would hand an email to a second external id fails the way a unique-index
// violation does.
func (s *Store) UpsertUser(_ context.Context, details core.UserDetails) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.emails[details.Email]; ok && owner != details.ExternalID {
		return nil, core.StorageError("upsert user", errEmailTaken)
	}

	now := time.Now().UTC()
	u, ok := s.users[details.ExternalID]
	if !ok {
		u = &core.User{
			Details:   details,
			Settings:  core.UserSettings{SpendLimit: core.DefaultSpendLimit},
			Logs:      []core.LogEntry{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.users[details.ExternalID] = u
		s.emails[details.Email] = details.ExternalID
		return copyUser(u), nil
	}

	// Re-sign-in refreshes profile fields; settings, logs and dob are kept.
	if u.Details.Email != details.Email {
		delete(s.emails, u.Details.Email)
		s.emails[details.Email] = details.ExternalID
	}
	u.Details.Email = details.Email
	u.Details.FirstName = details.FirstName
	u.Details.LastName = details.LastName
	u.Details.AuthProvider = details.AuthProvider
	u.UpdatedAt = now
	return copyUser(u), nil
}

// FindUser implements store.Directory.
func (s *Store) FindUser(_ context.Context, externalID string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyUser(u), nil
}

// AppendLog implements store.LogStore.
func (s *Store) AppendLog(_ context.Context, externalID string, entry core.LogEntry) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, core.ErrNotFound
	}
	entry.ID = uuid.NewString()
	u.Logs = append(u.Logs, entry)
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

// UpdateLog implements store.LogStore.
func (s *Store) UpdateLog(_ context.Context, externalID, logID string, in core.LogInput) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, core.ErrNotFound
	}
	entry := u.FindLog(logID)
	if entry == nil {
		return nil, core.ErrNotFound
	}
	entry.Amount = in.Amount
	entry.Category = in.Category
	entry.Note = in.Note
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

// RemoveLog implements store.LogStore.
func (s *Store) RemoveLog(_ context.Context, externalID, logID string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[externalID]
	if !ok {
		return nil, core.ErrNotFound
	}
	for i := range u.Logs {
		if u.Logs[i].ID == logID {
			u.Logs = append(u.Logs[:i], u.Logs[i+1:]...)
			break
		}
	}
	// A log id that matched nothing still succeeds: removal of zero
	// elements is not distinguished from removal of one.
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func copyUser(u *core.User) *core.User {
	out := *u
	out.Logs = make([]core.LogEntry, len(u.Logs))
	copy(out.Logs, u.Logs)
	return &out
}
