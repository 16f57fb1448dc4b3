package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/posts"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\_ a\\b`, escapeLike(`100% _real_ a\b`))
}

func TestPostRepository_CreateUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)
	creator := createTestUser(t, db, "poster")

	location := "Lisbon"
	created, err := repo.Create(ctx, &posts.Post{
		CreatorID: creator,
		Caption:   "Sunset",
		Location:  &location,
		Tags:      []string{"sun", "sea"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"sun", "sea"}, created.Tags)
	require.NotNil(t, created.Creator)
	assert.Equal(t, creator, created.Creator.ID)

	created.Caption = "Sunrise"
	created.Location = nil
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise", updated.Caption)
	assert.Nil(t, updated.Location)

	_, err = repo.Update(ctx, &posts.Post{ID: "missing"})
	assert.ErrorIs(t, err, posts.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

func TestPostRepository_ListByCreatorPages(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)
	creator := createTestUser(t, db, "pager")

	var ids []string
	for _, caption := range []string{"one", "two", "three"} {
		ids = append(ids, createTestPost(t, db, creator, caption))
	}

	first, err := repo.ListByCreator(ctx, creator, posts.ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID, "newest first")

	second, err := repo.ListByCreator(ctx, creator, posts.ListParams{Cursor: first[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, ids[0], second[0].ID)
}

func TestPostRepository_SearchAndSaved(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)
	creator := createTestUser(t, db, "searcher")
	post := createTestPost(t, db, creator, "Weekend HIKING trip")
	_ = createTestPost(t, db, creator, "50% off")

	found, err := repo.Search(ctx, "hiking", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, post, found[0].ID)

	tagged, err := repo.Create(ctx, &posts.Post{
		CreatorID: creator,
		Caption:   "golden hour",
		Tags:      []string{"Sunset", "Coast"},
	})
	require.NoError(t, err)

	for _, term := range []string{"Sunset", "sunset", "SUNSET"} {
		found, err := repo.Search(ctx, term, 10)
		require.NoError(t, err)
		require.Len(t, found, 1, term)
		assert.Equal(t, tagged.ID, found[0].ID, term)
	}

	found, err = repo.Search(ctx, "sun", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "tags match whole, not by substring")

	_, err = db.Exec(`INSERT INTO saves (post_id, user_id) VALUES ($1, $2)`, post, creator)
	require.NoError(t, err)

	saved, err := repo.ListSaved(ctx, creator, posts.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, post, saved[0].ID)
}
