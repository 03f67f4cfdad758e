package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/core"
)

func seedUser(t *testing.T, s *Store, externalID string) *core.User {
	t.Helper()
	user, err := s.UpsertUser(context.Background(), core.UserDetails{
		ExternalID:   externalID,
		AuthProvider: core.DefaultAuthProvider,
		FirstName:    "Test",
		LastName:     "User",
		Email:        externalID + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func TestUpsertUser_CreatesWithDefaults(t *testing.T) {
	s := New()
	user := seedUser(t, s, "uid-1")

	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
	assert.NotNil(t, user.Logs)
	assert.Empty(t, user.Logs)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUpsertUser_RefreshKeepsSettingsAndLogs(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")

	_, err := s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 5, Category: "A"})
	require.NoError(t, err)

	user, err := s.UpsertUser(ctx, core.UserDetails{
		ExternalID:   "uid-1",
		AuthProvider: core.DefaultAuthProvider,
		FirstName:    "Renamed",
		LastName:     "Person",
		Email:        "renamed@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", user.Details.FirstName)
	assert.Equal(t, "renamed@example.com", user.Details.Email)
	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
	assert.Len(t, user.Logs, 1)
}

func TestUpsertUser_EmailUniqueAcrossUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-1", AuthProvider: "google",
		FirstName: "A", LastName: "B", Email: "same@example.com",
	})
	require.NoError(t, err)

	// A second external id may not claim the same email.
	_, err = s.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-2", AuthProvider: "google",
		FirstName: "C", LastName: "D", Email: "same@example.com",
	})
	require.ErrorIs(t, err, core.ErrStorage)

	_, err = s.FindUser(ctx, "uid-2")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The owner can keep re-signing-in with its own email.
	_, err = s.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-1", AuthProvider: "google",
		FirstName: "A", LastName: "B", Email: "same@example.com",
	})
	require.NoError(t, err)

	// Changing the owner's email frees the old one.
	_, err = s.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-1", AuthProvider: "google",
		FirstName: "A", LastName: "B", Email: "new@example.com",
	})
	require.NoError(t, err)

	user, err := s.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-2", AuthProvider: "google",
		FirstName: "C", LastName: "D", Email: "same@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "same@example.com", user.Details.Email)
}

func TestFindUser_NotFound(t *testing.T) {
	s := New()

	_, err := s.FindUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAppendLog_AssignsUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")

	user, err := s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 1, Category: "A"})
	require.NoError(t, err)
	user, err = s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 2, Category: "B"})
	require.NoError(t, err)

	require.Len(t, user.Logs, 2)
	assert.NotEmpty(t, user.Logs[0].ID)
	assert.NotEmpty(t, user.Logs[1].ID)
	assert.NotEqual(t, user.Logs[0].ID, user.Logs[1].ID)
	// insertion order preserved
	assert.Equal(t, "A", user.Logs[0].Category)
	assert.Equal(t, "B", user.Logs[1].Category)
}

func TestUpdateLog_CrossUserPairMustMatch(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")
	seedUser(t, s, "uid-2")

	owner, err := s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 10, Category: "Food"})
	require.NoError(t, err)
	logID := owner.Logs[0].ID

	_, err = s.UpdateLog(ctx, "uid-2", logID, core.LogInput{Amount: 999, Category: "Hijack"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	unchanged, err := s.FindUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, float64(10), unchanged.Logs[0].Amount)
}

func TestUpdateLog_PreservesCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")

	user, err := s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 10, Category: "Food"})
	require.NoError(t, err)
	logID := user.Logs[0].ID
	createdAt := user.Logs[0].CreatedAt

	user, err = s.UpdateLog(ctx, "uid-1", logID, core.LogInput{Amount: 20, Category: "Dining", Note: "n"})
	require.NoError(t, err)
	assert.Equal(t, createdAt, user.Logs[0].CreatedAt)
	assert.Equal(t, logID, user.Logs[0].ID)
}

func TestRemoveLog_MissingIDIsNoOpSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")

	user, err := s.RemoveLog(ctx, "uid-1", "never-existed")
	require.NoError(t, err)
	assert.Empty(t, user.Logs)

	_, err = s.RemoveLog(ctx, "nobody", "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReturnedUserIsACopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "uid-1")

	user, err := s.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 1, Category: "A"})
	require.NoError(t, err)

	user.Logs[0].Category = "tampered"

	fresh, err := s.FindUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "A", fresh.Logs[0].Category)
}
