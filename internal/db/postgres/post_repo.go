package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"Snapgram/internal/core/posts"
)

const postColumns = `
	p.id, p.creator_id, p.caption, p.image_id, p.image_url, p.location, p.tags,
	p.likes_count, p.saves_count, p.created_at, p.updated_at,
	u.name AS creator_name, u.username AS creator_username, u.image_url AS creator_image_url`

// postRow adds the columns Post can't scan directly
type postRow struct {
	posts.Post
	Tags            pq.StringArray `db:"tags"`
	CreatorName     string         `db:"creator_name"`
	CreatorUsername string         `db:"creator_username"`
	CreatorImageURL string         `db:"creator_image_url"`
}

func (row *postRow) toPost() *posts.Post {
	p := row.Post
	p.Tags = []string(row.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Creator = &posts.Creator{
		ID:       p.CreatorID,
		Name:     row.CreatorName,
		Username: row.CreatorUsername,
		ImageURL: row.CreatorImageURL,
	}
	return &p
}

func toPosts(rows []postRow) []*posts.Post {
	result := make([]*posts.Post, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toPost())
	}
	return result
}

type postgresPostRepo struct {
	db *sqlx.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sqlx.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a post; tags are stored as a text array
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	query := `
		INSERT INTO posts (creator_id, caption, image_id, image_url, location, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		post.CreatorID, post.Caption, post.ImageID, post.ImageURL, post.Location, pq.Array(post.Tags),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("creator %s does not exist: %w", post.CreatorID, err)
		}
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1`

	var row postRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return row.toPost(), nil
}

func (r *postgresPostRepo) Update(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	query := `
		UPDATE posts
		SET caption = $2, location = $3, tags = $4, image_id = $5, image_url = $6, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		post.ID, post.Caption, post.Location, pq.Array(post.Tags), post.ImageID, post.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return nil, posts.ErrNotFound
	}

	return r.GetByID(ctx, post.ID)
}

// Delete removes the post; its likes and saves cascade
func (r *postgresPostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return posts.ErrNotFound
	}
	return nil
}

// List walks (created_at, id) newest first. The cursor row's position is
// looked up by ID, so a cursor pointing at a deleted post yields an empty page.
func (r *postgresPostRepo) List(ctx context.Context, params posts.ListParams) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE ($1 = '' OR (p.created_at, p.id) < (SELECT created_at, id FROM posts WHERE id = $1))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, params.Cursor, params.Limit); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return toPosts(rows), nil
}

// Search matches the caption or a whole tag, both case-insensitively
func (r *postgresPostRepo) Search(ctx context.Context, term string, limit int) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.caption ILIKE '%' || $1 || '%' ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM unnest(p.tags) AS tag WHERE lower(tag) = $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, escapeLike(term), strings.ToLower(term), limit); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return toPosts(rows), nil
}

// ListSaved orders by when the post was saved; the cursor is still a post ID
func (r *postgresPostRepo) ListSaved(ctx context.Context, userID string, params posts.ListParams) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM saves s
		JOIN posts p ON p.id = s.post_id
		JOIN users u ON u.id = p.creator_id
		WHERE s.user_id = $1
		  AND ($2 = '' OR (s.created_at, s.id) < (
			SELECT created_at, id FROM saves WHERE user_id = $1 AND post_id = $2))
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $3`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, params.Cursor, params.Limit); err != nil {
		return nil, fmt.Errorf("failed to list saved posts: %w", err)
	}
	return toPosts(rows), nil
}

func (r *postgresPostRepo) ListByCreator(ctx context.Context, creatorID string, params posts.ListParams) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.creator_id = $1
		  AND ($2 = '' OR (p.created_at, p.id) < (SELECT created_at, id FROM posts WHERE id = $2))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, creatorID, params.Cursor, params.Limit); err != nil {
		return nil, fmt.Errorf("failed to list creator posts: %w", err)
	}
	return toPosts(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
