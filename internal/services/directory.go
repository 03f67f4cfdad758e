// Package services orchestrates the record store and the AMQP export
// pipeline behind the HTTP layer.
package services

import (
	"context"
	"fmt"

	"pocketlog/internal/core"
	"pocketlog/internal/store"
)

// DirectoryService turns an authenticated identity into a stored user.
type DirectoryService struct {
	directory store.Directory
}

func NewDirectoryService(directory store.Directory) *DirectoryService {
	return &DirectoryService{directory: directory}
}

// FindOrCreate resolves the identity to its user document, creating one with
// default settings and an empty log list on first sign-in. Repeated sign-ins
// refresh the stored profile fields and leave settings and logs untouched.
func (s *DirectoryService) FindOrCreate(ctx context.Context, id core.Identity) (*core.User, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	provider := id.AuthProvider
	if provider == "" {
		provider = core.DefaultAuthProvider
	}

	first, last := core.SplitDisplayName(id.DisplayName)

	user, err := s.directory.UpsertUser(ctx, core.UserDetails{
		ExternalID:   id.ExternalID,
		AuthProvider: provider,
		FirstName:    first,
		LastName:     last,
		Email:        id.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}
