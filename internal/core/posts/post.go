package posts

import (
	"strings"
	"time"

	"Snapgram/internal/core/blobs"
)

// Post represents a post row
type Post struct {
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
	Location   *string   `json:"location,omitempty" db:"location"`
	Creator    *Creator  `json:"creator,omitempty" db:"-"`
	ID         string    `json:"id" db:"id"`
	CreatorID  string    `json:"creatorId" db:"creator_id"`
	Caption    string    `json:"caption" db:"caption"`
	ImageID    string    `json:"imageId" db:"image_id"`
	ImageURL   string    `json:"imageUrl" db:"image_url"`
	Tags       []string  `json:"tags" db:"-"`
	LikesCount int       `json:"likesCount" db:"likes_count"`
	SavesCount int       `json:"savesCount" db:"saves_count"`
}

// Creator is the author summary embedded in feed rows
type Creator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"imageUrl"`
}

// CreatePostRequest is the input of CreatePost
type CreatePostRequest struct {
	Location  *string
	File      *blobs.File
	CreatorID string
	Caption   string
	Tags      []string
}

// UpdatePostRequest is the input of UpdatePost.
// Nil Caption, Location and Tags keep the existing values; an empty File keeps the existing image.
type UpdatePostRequest struct {
	Caption  *string
	Location *string
	File     *blobs.File
	PostID   string
	ActorID  string
	Tags     []string
}

// Page is one page of a cursor-paginated listing.
// NextCursor is the ID of the last row, empty when there are no more rows.
type Page struct {
	NextCursor string  `json:"nextCursor,omitempty"`
	Posts      []*Post `json:"posts"`
}

// ListParams selects a page: Cursor is the ID of the last row of the previous page
type ListParams struct {
	Cursor string
	Limit  int
}

const (
	// RecentLimit is the size of the home feed
	RecentLimit = 20
	// DefaultPageLimit is used when a caller doesn't give a limit
	DefaultPageLimit = 10
	// MaxPageLimit caps client-supplied limits
	MaxPageLimit = 50
	// MaxCaptionLength mirrors the create form limit
	MaxCaptionLength = 2200
)

// ParseTags splits a comma separated tag list, dropping spaces and empty entries
func ParseTags(raw string) []string {
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// NormalizeCursor maps the "from the start" sentinels to an empty cursor
func NormalizeCursor(cursor string) string {
	cursor = strings.TrimSpace(cursor)
	if cursor == "0" {
		return ""
	}
	return cursor
}

// ClampLimit applies DefaultPageLimit and MaxPageLimit
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// NewPage builds a page from rows fetched with limit; a short page has no next cursor
func NewPage(rows []*Post, limit int) *Page {
	if rows == nil {
		rows = []*Post{}
	}
	page := &Page{Posts: rows}
	if len(rows) == limit && limit > 0 {
		page.NextCursor = rows[len(rows)-1].ID
	}
	return page
}
