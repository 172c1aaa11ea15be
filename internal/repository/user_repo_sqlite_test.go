package repository

import (
	"context"
	"path/filepath"
	"testing"

	"user_management/internal/models"
	"user_management/internal/repository/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *UserRepository {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewUserRepository(conn, db.SQLite)
}

func TestSQLite_CreateRejectsDuplicateEmail(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.User{Name: "Alice Doe", Email: "alice@example.com", PasswordHash: "h1", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = repo.Create(ctx, models.User{Name: "Other Alice", Email: "alice@example.com", PasswordHash: "h2", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice Doe", users[0].Name)
}

func TestSQLite_UpdateLifecycle(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	aliceID, err := repo.Create(ctx, models.User{Name: "Alice Doe", Email: "alice@example.com", PasswordHash: "h1", Role: models.RoleUser})
	require.NoError(t, err)
	bobID, err := repo.Create(ctx, models.User{Name: "Bob Roe", Email: "bob@example.com", PasswordHash: "h2", Role: models.RoleAdmin})
	require.NoError(t, err)

	// email owned by another row
	err = repo.Update(ctx, models.User{ID: aliceID, Name: "Alice Doe", Email: "bob@example.com", PasswordHash: "h1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	alice, err := repo.GetByID(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "alice@example.com", alice.Email)

	// keeping its own email is fine
	err = repo.Update(ctx, models.User{ID: aliceID, Name: "Alice Smith", Email: "alice@example.com", PasswordHash: "h3"})
	require.NoError(t, err)

	alice, err = repo.GetByID(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", alice.Name)
	assert.Equal(t, "h3", alice.PasswordHash)
	assert.Equal(t, models.RoleUser, alice.Role)
	assert.False(t, alice.UpdatedAt.Before(alice.CreatedAt))

	err = repo.Update(ctx, models.User{ID: 9999, Name: "Nobody Here", Email: "nobody@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, bobID))
	assert.ErrorIs(t, repo.Delete(ctx, bobID), ErrNotFound)

	bob, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, bob)
}

func TestSQLite_UpsertResetsRoleOnly(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.User{Name: "Admin Person", Email: "admin@123.com", PasswordHash: "custom", Role: models.RoleUser})
	require.NoError(t, err)

	got, err := repo.Upsert(ctx, models.User{Name: "ADMIN", Email: "admin@123.com", PasswordHash: "seeded", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	u, err := repo.GetByEmail(ctx, "admin@123.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "Admin Person", u.Name)
	assert.Equal(t, "custom", u.PasswordHash)

	newID, err := repo.Upsert(ctx, models.User{Name: "USER", Email: "user@123.com", PasswordHash: "seeded", Role: models.RoleUser})
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
	require.NoError(t, repo.Ping(ctx))
}
