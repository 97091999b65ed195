package postgres_test

import (
	"context"
	"mowitajm/postgres"
	"mowitajm/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, user.User{
		DisplayName:  "Arvid",
		Email:        "arvid@mail.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, user.RoleUser, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, user.User{
			DisplayName:  "Someone",
			Email:        "arvid@mail.com",
			PasswordHash: "$2a$10$other",
		})
		assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "arvid@mail.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Arvid", byID.DisplayName)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@mail.com")
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		_, err = repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, repo.UpdateRole(ctx, created.ID, user.RoleAdmin))

		u, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, u.Role)

		err = repo.UpdateRole(ctx, "00000000-0000-0000-0000-000000000000", user.RoleAdmin)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("all users", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, user.User{DisplayName: "Bea", Email: "bea@mail.com", PasswordHash: "x"})
		require.NoError(t, err)

		users, err := repo.AllUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Arvid", users[0].DisplayName)
		assert.Equal(t, "Bea", users[1].DisplayName)
	})
}
