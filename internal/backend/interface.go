package backend

import (
	"context"

	"pocketlog/internal/store"
)

// Backend is the full record store surface the services need.
type Backend interface {
	store.Directory
	store.LogStore
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the backend instance and an optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

// Type selects a record store implementation.
type Type string

const (
	MongoBackend  Type = "mongo"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MongoBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// Mongo specific
	MongoURI      string
	MongoDatabase string

	// SQLite specific
	SQLiteDBPath string
}
