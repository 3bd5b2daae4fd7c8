package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/repository"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

func TestAccountRepo_CreateAndGet(t *testing.T) {
	repo, dir := setupRepo(t)

	ok, err := repo.Account.Exists(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, ok)

	profile, err := repo.Account.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, profile.Username)
	assert.Equal(t, "Informatik", profile.Program)
	assert.Equal(t, period.Date(2023, 9, 1), profile.StartDate)
	assert.Equal(t, period.Date(2025, 8, 31), profile.EndDate)

	data, err := os.ReadFile(filepath.Join(dir, testUser, "Data"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"pw":"secret","ziel_note":"2.0","startdatum":"2023-09-01","enddatum":"2025-08-31","studiengang":"Informatik"}`, string(data))
}

func TestAccountRepo_Create_NameTaken(t *testing.T) {
	repo, _ := setupRepo(t)

	err := repo.Account.Create(context.Background(), &model.Profile{
		Username:  testUser,
		StartDate: period.Date(2024, 1, 1),
		EndDate:   period.Date(2026, 1, 1),
	})
	assert.True(t, errors.Is(err, apperrors.ErrNameTaken), "实际: %v", err)
}

func TestAccountRepo_Get_NotFound(t *testing.T) {
	repo := repository.NewRepository(t.TempDir())

	_, err := repo.Account.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound), "实际: %v", err)

	ok, err := repo.Account.Exists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountRepo_Get_Corrupt(t *testing.T) {
	repo, dir := setupRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, testUser, "Data"), []byte(`{"pw":"x","startdatum":"bald"}`), 0o644))

	_, err := repo.Account.Get(context.Background(), testUser)
	assert.True(t, errors.Is(err, apperrors.ErrCorruptRecord), "实际: %v", err)
}

func TestAccountRepo_Update(t *testing.T) {
	repo, _ := setupRepo(t)

	profile, err := repo.Account.Get(context.Background(), testUser)
	require.NoError(t, err)
	profile.Password = "$2a$10$hash"
	require.NoError(t, repo.Account.Update(context.Background(), profile))

	reloaded, err := repo.Account.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", reloaded.Password)

	err = repo.Account.Update(context.Background(), &model.Profile{Username: "ghost"})
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound), "实际: %v", err)
}
