package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketlog/internal/core"
	"pocketlog/internal/store/memory"
)

func TestFindOrCreate_CreatesUserWithDefaults(t *testing.T) {
	svc := NewDirectoryService(memory.New())

	user, err := svc.FindOrCreate(context.Background(), core.Identity{
		ExternalID:  "uid-1",
		Email:       "ada@example.com",
		DisplayName: "Ada Lovelace",
	})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.Details.ExternalID)
	assert.Equal(t, "ada@example.com", user.Details.Email)
	assert.Equal(t, "Ada", user.Details.FirstName)
	assert.Equal(t, "Lovelace", user.Details.LastName)
	assert.Equal(t, core.DefaultAuthProvider, user.Details.AuthProvider)
	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
	assert.Empty(t, user.Logs)
}

func TestFindOrCreate_SecondSignInKeepsSettingsAndLogs(t *testing.T) {
	mem := memory.New()
	svc := NewDirectoryService(mem)
	logs := NewLogService(mem, mem, nil)
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, core.Identity{
		ExternalID:  "uid-1",
		Email:       "ada@example.com",
		DisplayName: "Ada Lovelace",
	})
	require.NoError(t, err)

	_, err = logs.Add(ctx, "uid-1", core.LogInput{Amount: 9.5, Category: "Coffee"})
	require.NoError(t, err)

	user, err := svc.FindOrCreate(ctx, core.Identity{
		ExternalID:  "uid-1",
		Email:       "ada@new.example.com",
		DisplayName: "Ada K Lovelace",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@new.example.com", user.Details.Email)
	assert.Equal(t, "Ada", user.Details.FirstName)
	assert.Equal(t, "K Lovelace", user.Details.LastName)
	assert.Equal(t, float64(core.DefaultSpendLimit), user.Settings.SpendLimit)
	require.Len(t, user.Logs, 1)
	assert.Equal(t, "Coffee", user.Logs[0].Category)
}

func TestFindOrCreate_Validation(t *testing.T) {
	svc := NewDirectoryService(memory.New())
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, core.Identity{Email: "a@b.c"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = svc.FindOrCreate(ctx, core.Identity{ExternalID: "uid-1"})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestFindOrCreate_EmptyDisplayName(t *testing.T) {
	svc := NewDirectoryService(memory.New())

	user, err := svc.FindOrCreate(context.Background(), core.Identity{
		ExternalID: "uid-2",
		Email:      "anon@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "User", user.Details.FirstName)
	assert.Equal(t, " ", user.Details.LastName)
}
