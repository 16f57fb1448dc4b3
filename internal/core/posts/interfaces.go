package posts

import "context"

// Service defines the business logic interface for posts.
// Mutations pair a post row with its image asset in the blob store and
// compensate by deleting the asset when the row write fails.
type Service interface {
	// CreatePost uploads the image (if any), then creates the row.
	// Flow: Validate -> Upload -> Derive preview URL -> Create row -> Bump creator post_count
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)

	// UpdatePost rewrites caption, location, tags and optionally the image.
	// Only the creator may update a post.
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error)

	// DeletePost removes the row, then the image. Only the creator may delete a post.
	DeletePost(ctx context.Context, postID, actorID string) error

	GetPost(ctx context.Context, postID string) (*Post, error)

	// GetPostForEdit returns the post only when actorID is its creator
	GetPostForEdit(ctx context.Context, postID, actorID string) (*Post, error)

	// ListRecent returns the newest RecentLimit posts
	ListRecent(ctx context.Context) ([]*Post, error)

	ListPage(ctx context.Context, params ListParams) (*Page, error)
	Search(ctx context.Context, term string) ([]*Post, error)
	ListSaved(ctx context.Context, userID string, params ListParams) (*Page, error)
	ListByCreator(ctx context.Context, creatorID string, params ListParams) (*Page, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts a new post and returns it with its assigned ID
	Create(ctx context.Context, post *Post) (*Post, error)

	// GetByID returns ErrNotFound when the post doesn't exist
	GetByID(ctx context.Context, id string) (*Post, error)

	// Update writes caption, location, tags, image_id and image_url
	Update(ctx context.Context, post *Post) (*Post, error)

	Delete(ctx context.Context, id string) error

	// List returns posts newest first, starting after params.Cursor
	List(ctx context.Context, params ListParams) ([]*Post, error)

	// Search matches caption case-insensitively
	Search(ctx context.Context, term string, limit int) ([]*Post, error)

	// ListSaved returns posts saved by userID, most recently saved first
	ListSaved(ctx context.Context, userID string, params ListParams) ([]*Post, error)

	// ListByCreator returns posts by creatorID newest first
	ListByCreator(ctx context.Context, creatorID string, params ListParams) ([]*Post, error)
}
