package relationships

import "context"

// Service defines the toggle operations for likes, saves and follows.
// Every toggle flips the existence of one (owner, actor) row and keeps the
// owning entity's denormalized counters in step with it.
type Service interface {
	// ToggleLike likes the post if userID has not liked it yet, otherwise removes the like.
	// Adjusts posts.likes_count by one in the same direction.
	ToggleLike(ctx context.Context, postID, userID string) (*ToggleResult, error)

	// ToggleSave saves or unsaves the post for userID.
	// Adjusts posts.saves_count by one in the same direction.
	ToggleSave(ctx context.Context, postID, userID string) (*ToggleResult, error)

	// ToggleFollow makes followerID follow followeeID, or unfollow if already following.
	// Moves followers_count on the followee and followees_count on the follower together.
	ToggleFollow(ctx context.Context, followeeID, followerID string) (*ToggleResult, error)

	// IsLiked, IsSaved and IsFollowing report current relationship existence for viewer state
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	IsSaved(ctx context.Context, postID, userID string) (bool, error)
	IsFollowing(ctx context.Context, followeeID, followerID string) (bool, error)

	// GetRelationship returns the row for (ownerID, actorID) or ErrNotFound
	GetRelationship(ctx context.Context, kind Kind, ownerID, actorID string) (*Relationship, error)

	// Reconcile recomputes every denormalized counter from relationship row counts
	// and returns the counters that had drifted.
	Reconcile(ctx context.Context) ([]Drift, error)
}

// Repository is the relationship-table half of the Relationship Store.
// It never touches counters; the orchestrator sequences the two.
type Repository interface {
	// Find returns the row matching (ownerID, actorID), limited to one.
	// Returns ErrNotFound when no row matches.
	Find(ctx context.Context, kind Kind, ownerID, actorID string) (*Relationship, error)

	// Create inserts a row for (ownerID, actorID) and returns it with its assigned ID.
	// Returns ErrAlreadyExists on a unique-pair conflict and ErrSubjectNotFound
	// when the owner or actor row doesn't exist.
	Create(ctx context.Context, kind Kind, ownerID, actorID string) (*Relationship, error)

	// Delete removes the row by ID
	Delete(ctx context.Context, kind Kind, id string) error
}

// CounterStore performs atomic increments and decrements of numeric columns.
// Decrements never take a counter below zero.
type CounterStore interface {
	Increment(ctx context.Context, counter Counter, amount int) error
	Decrement(ctx context.Context, counter Counter, amount int) error
}

// ReconcileRepository recomputes stored counters from relationship row counts
type ReconcileRepository interface {
	// RecountAll rewrites every drifted counter and returns what was corrected
	RecountAll(ctx context.Context) ([]Drift, error)
}
