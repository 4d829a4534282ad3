package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/dailyphrase/internal/model"
)

func TestUserRepository_ActiveUsersSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	repo.Add(model.User{ID: 30, Email: "c@example.com", Status: model.StatusActive})
	repo.Add(model.User{ID: 10, Email: "a@example.com", Status: model.StatusActive})
	repo.Add(model.User{ID: 20, Email: "b@example.com", Status: model.StatusPendingConfirmation})
	added := repo.Add(model.User{Email: "d@example.com", Status: model.StatusDisabled})
	assert.Equal(t, int64(31), added.ID)

	users, err := repo.ActiveUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(10), users[0].ID)
	assert.Equal(t, int64(30), users[1].ID)

	require.NoError(t, repo.SetStatus(ctx, 20, model.StatusActive))
	users, err = repo.ActiveUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	got, err := repo.GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)

	require.ErrorIs(t, repo.SetStatus(ctx, 99, model.StatusActive), model.ErrNotFound)
	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestPhraseRepository_ActivePhrases(t *testing.T) {
	repo := NewPhraseRepository()
	repo.Add(model.Phrase{ID: 5, Text: "b", Active: true})
	repo.Add(model.Phrase{ID: 2, Text: "a", Active: true})
	repo.Add(model.Phrase{ID: 3, Text: "hidden", Active: false})

	phrases, err := repo.ActivePhrases(context.Background())
	require.NoError(t, err)
	require.Len(t, phrases, 2)
	assert.Equal(t, int64(2), phrases[0].ID)
	assert.Equal(t, int64(5), phrases[1].ID)
}
