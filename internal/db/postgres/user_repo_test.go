package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/users"
)

func TestUserRepository_CreateAndConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	id := uuid.NewString()
	username := "alice_" + id[:8]
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM users WHERE id = $1`, id) })

	created, err := repo.Create(ctx, &users.User{ID: id, Name: "Alice", Username: username, Email: username + "@example.com"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.Zero(t, byName.PostCount)

	_, err = repo.Create(ctx, &users.User{ID: uuid.NewString(), Name: "Imposter", Username: username, Email: "other@example.com"})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestUserRepository_FollowersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	star := createTestUser(t, db, "star")
	fanA := createTestUser(t, db, "fan_a")
	fanB := createTestUser(t, db, "fan_b")

	_, err := db.Exec(`INSERT INTO follows (followee_id, follower_id, created_at) VALUES ($1, $2, NOW() - INTERVAL '1 minute')`, star, fanA)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO follows (followee_id, follower_id) VALUES ($1, $2)`, star, fanB)
	require.NoError(t, err)

	page, err := repo.ListFollowers(ctx, star, users.ListParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, fanB, page[0].ID)

	next, err := repo.ListFollowers(ctx, star, users.ListParams{Cursor: fanB, Limit: 1})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, fanA, next[0].ID)

	followees, err := repo.ListFollowees(ctx, fanA, users.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, followees, 1)
	assert.Equal(t, star, followees[0].ID)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	id := createTestUser(t, db, "editor")

	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	user.Bio = "hello"
	user.ImageID = "asset-1"

	updated, err := repo.UpdateProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "asset-1", updated.ImageID)

	_, err = repo.UpdateProfile(ctx, &users.User{ID: "missing", Username: "x_" + id[:8]})
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
