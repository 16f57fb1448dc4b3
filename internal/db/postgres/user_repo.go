package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Snapgram/internal/core/users"
)

const userColumns = `
	u.id, u.name, u.username, u.email, u.image_id, u.image_url, u.bio,
	u.post_count, u.followers_count, u.followees_count, u.created_at, u.updated_at`

type postgresUserRepo struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user; username and email are unique
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (id, name, username, email, image_id, image_url, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Username, user.Email, user.ImageID, user.ImageURL, user.Bio,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
}

func (r *postgresUserRepo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	var user users.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListTop returns the most prolific creators
func (r *postgresUserRepo) ListTop(ctx context.Context, limit int) ([]*users.User, error) {
	return r.list(ctx, `SELECT `+userColumns+`
		FROM users u
		ORDER BY u.post_count DESC, u.id DESC
		LIMIT $1`, limit)
}

// List walks (post_count, id) descending. Counters move between pages, so
// a user may be skipped or repeated while someone posts.
func (r *postgresUserRepo) List(ctx context.Context, params users.ListParams) ([]*users.User, error) {
	return r.list(ctx, `SELECT `+userColumns+`
		FROM users u
		WHERE ($1 = '' OR (u.post_count, u.id) < (SELECT post_count, id FROM users WHERE id = $1))
		ORDER BY u.post_count DESC, u.id DESC
		LIMIT $2`, params.Cursor, params.Limit)
}

func (r *postgresUserRepo) ListFollowers(ctx context.Context, userID string, params users.ListParams) ([]*users.User, error) {
	return r.list(ctx, `SELECT `+userColumns+`
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		  AND ($2 = '' OR (f.created_at, f.id) < (
			SELECT created_at, id FROM follows WHERE followee_id = $1 AND follower_id = $2))
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $3`, userID, params.Cursor, params.Limit)
}

func (r *postgresUserRepo) ListFollowees(ctx context.Context, userID string, params users.ListParams) ([]*users.User, error) {
	return r.list(ctx, `SELECT `+userColumns+`
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		  AND ($2 = '' OR (f.created_at, f.id) < (
			SELECT created_at, id FROM follows WHERE follower_id = $1 AND followee_id = $2))
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $3`, userID, params.Cursor, params.Limit)
}

func (r *postgresUserRepo) list(ctx context.Context, query string, args ...interface{}) ([]*users.User, error) {
	var result []*users.User
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if result == nil {
		result = []*users.User{}
	}
	return result, nil
}

// UpdateProfile never touches the counters
func (r *postgresUserRepo) UpdateProfile(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		UPDATE users
		SET name = $2, username = $3, bio = $4, image_id = $5, image_url = $6, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Username, user.Bio, user.ImageID, user.ImageURL)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return nil, users.ErrUserNotFound
	}

	return r.GetByID(ctx, user.ID)
}
