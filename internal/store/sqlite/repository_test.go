package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "pocketlog_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, externalID string) *core.User {
	t.Helper()
	user, err := repo.UpsertUser(context.Background(), core.UserDetails{
		ExternalID:   externalID,
		AuthProvider: core.DefaultAuthProvider,
		FirstName:    "Test",
		LastName:     "User",
		Email:        externalID + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func TestUpsertUser_CreateAndRefresh(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "uid-1")
	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
	assert.Empty(t, user.Logs)

	_, err := repo.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 3, Category: "Coffee"})
	require.NoError(t, err)

	user, err = repo.UpsertUser(ctx, core.UserDetails{
		ExternalID:   "uid-1",
		AuthProvider: core.DefaultAuthProvider,
		FirstName:    "Renamed",
		LastName:     "Person",
		Email:        "renamed@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Details.FirstName)
	assert.Equal(t, "renamed@example.com", user.Details.Email)
	assert.Len(t, user.Logs, 1)
	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
}

func TestFindUser_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "uid-1")

	user, err := repo.FindUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.Details.ExternalID)
	assert.Equal(t, "uid-1@example.com", user.Details.Email)

	_, err = repo.FindUser(ctx, "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLogLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "uid-1")

	user, err := repo.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 12.5, Category: "Groceries", Note: "weekly"})
	require.NoError(t, err)
	require.Len(t, user.Logs, 1)
	logID := user.Logs[0].ID
	assert.NotEmpty(t, logID)

	user, err = repo.UpdateLog(ctx, "uid-1", logID, core.LogInput{Amount: 20, Category: "Dining", Note: "dinner"})
	require.NoError(t, err)
	assert.Equal(t, float64(20), user.Logs[0].Amount)
	assert.Equal(t, "Dining", user.Logs[0].Category)

	user, err = repo.RemoveLog(ctx, "uid-1", logID)
	require.NoError(t, err)
	assert.Empty(t, user.Logs)
}

func TestUpdateLog_NotFoundCases(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "uid-1")
	seedUser(t, repo, "uid-2")

	owner, err := repo.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 10, Category: "Food"})
	require.NoError(t, err)
	logID := owner.Logs[0].ID

	_, err = repo.UpdateLog(ctx, "uid-1", "missing", core.LogInput{Amount: 1, Category: "X"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	// valid log id under the wrong user
	_, err = repo.UpdateLog(ctx, "uid-2", logID, core.LogInput{Amount: 999, Category: "Hijack"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	unchanged, err := repo.FindUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, float64(10), unchanged.Logs[0].Amount)
}

func TestRemoveLog_MissingIDIsNoOpSuccess(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "uid-1")

	user, err := repo.RemoveLog(ctx, "uid-1", "never-existed")
	require.NoError(t, err)
	assert.Empty(t, user.Logs)

	_, err = repo.RemoveLog(ctx, "nobody", "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocumentSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pocketlog_test.db")
	ctx := context.Background()

	repo, err := NewRepository(dbPath)
	require.NoError(t, err)
	_, err = repo.UpsertUser(ctx, core.UserDetails{
		ExternalID: "uid-1", AuthProvider: "google", Email: "a@b.c",
		FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)
	_, err = repo.AppendLog(ctx, "uid-1", core.LogEntry{Amount: 7, Category: "Books"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	user, err := reopened.FindUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, user.Logs, 1)
	assert.Equal(t, "Books", user.Logs[0].Category)
}
