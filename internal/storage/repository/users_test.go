package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	u := &models.User{
		Email:        "moder@example.com",
		PasswordHash: "hash",
		FirstName:    "Olga",
		IsActive:     true,
		Groups:       []string{"moderators"},
	}
	require.NoError(t, storage.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.False(t, u.DateJoined.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		err := storage.CreateUser(ctx, &models.User{Email: "moder@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, errdefs.ErrAlreadyExists)
	})

	t.Run("get by email keeps groups", func(t *testing.T) {
		got, err := storage.GetUserByEmail(ctx, "MODER@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, []string{"moderators"}, got.Groups)
		assert.Nil(t, got.LastLogin)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := storage.GetUserByID(ctx, 999999)
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})

	t.Run("update profile and last login", func(t *testing.T) {
		u.City = "Kazan"
		require.NoError(t, storage.UpdateUserProfile(ctx, u))
		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, storage.TouchLastLogin(ctx, u.ID, now))

		got, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kazan", got.City)
		require.NotNil(t, got.LastLogin)
		assert.WithinDuration(t, now, *got.LastLogin, time.Second)
	})

	t.Run("list with pagination", func(t *testing.T) {
		f := NewTestDataFactory(storage)
		f.CreateUser(t, "second@example.com")
		f.CreateUser(t, "third@example.com")

		users, total, err := storage.ListUsers(ctx, models.PageRequest{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, users, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.DeleteUser(ctx, u.ID))
		assert.ErrorIs(t, storage.DeleteUser(ctx, u.ID), errdefs.ErrNotFound)
	})
}

func TestStorage_DeactivateInactiveUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(storage)

	old := time.Now().AddDate(0, 0, -40)
	recent := time.Now().AddDate(0, 0, -5)

	staleLogin := f.CreateUser(t, "stale@example.com")
	require.NoError(t, storage.TouchLastLogin(ctx, staleLogin.ID, old))

	freshLogin := f.CreateUser(t, "fresh@example.com")
	require.NoError(t, storage.TouchLastLogin(ctx, freshLogin.ID, recent))

	neverLoggedOld := f.CreateUser(t, "never-old@example.com")
	_, err := storage.DB.Exec(`UPDATE users SET date_joined = $1 WHERE id = $2`, old, neverLoggedOld.ID)
	require.NoError(t, err)

	neverLoggedNew := f.CreateUser(t, "never-new@example.com")

	staff := &models.User{Email: "staff@example.com", PasswordHash: "x", IsActive: true, IsStaff: true}
	require.NoError(t, storage.CreateUser(ctx, staff))
	require.NoError(t, storage.TouchLastLogin(ctx, staff.ID, old))

	n, err := storage.DeactivateInactiveUsers(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	expected := map[int64]bool{
		staleLogin.ID:     false,
		freshLogin.ID:     true,
		neverLoggedOld.ID: false,
		neverLoggedNew.ID: true,
		staff.ID:          true,
	}
	for id, active := range expected {
		got, err := storage.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, active, got.IsActive, "user %d", id)
	}
}
