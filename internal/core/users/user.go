package users

import (
	"strings"
	"time"

	"Snapgram/internal/core/blobs"
)

// User represents a Snapgram account and its denormalized counters.
// post_count, followers_count and followees_count are maintained by the
// post and relationship services, never written through this package.
type User struct {
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email,omitempty" db:"email"`
	ImageID        string    `json:"imageId" db:"image_id"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	Bio            string    `json:"bio" db:"bio"`
	PostCount      int       `json:"postCount" db:"post_count"`
	FollowersCount int       `json:"followersCount" db:"followers_count"`
	FolloweesCount int       `json:"followeesCount" db:"followees_count"`
}

// CreateUserRequest represents the input for creating a new user row
type CreateUserRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateProfileRequest is the input of UpdateProfile.
// An empty File keeps the current avatar.
type UpdateProfileRequest struct {
	File     *blobs.File
	UserID   string
	ActorID  string
	Name     string
	Username string
	Bio      string
}

// ListParams selects a page: Cursor is the ID of the last user of the previous page
type ListParams struct {
	Cursor string
	Limit  int
}

// Page is one page of users
type Page struct {
	NextCursor string  `json:"nextCursor,omitempty"`
	Users      []*User `json:"users"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
	MaxBioLength     = 500
)

func normalizeParams(params ListParams) ListParams {
	cursor := strings.TrimSpace(params.Cursor)
	if cursor == "0" {
		cursor = ""
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return ListParams{Cursor: cursor, Limit: limit}
}

func newPage(rows []*User, limit int) *Page {
	if rows == nil {
		rows = []*User{}
	}
	page := &Page{Users: rows}
	if len(rows) == limit {
		page.NextCursor = rows[len(rows)-1].ID
	}
	return page
}
