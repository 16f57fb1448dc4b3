package relationships

import "time"

// Kind identifies which relationship table a row lives in
type Kind string

const (
	// KindLike links a user (actor) to a post (owner)
	KindLike Kind = "like"
	// KindSave links a user (actor) to a post (owner)
	KindSave Kind = "save"
	// KindFollow links a follower (actor) to a followee (owner)
	KindFollow Kind = "follow"
)

// Valid reports whether k is one of the known relationship kinds
func (k Kind) Valid() bool {
	switch k {
	case KindLike, KindSave, KindFollow:
		return true
	default:
		return false
	}
}

// Relationship is one row of a relationship table.
// OwnerID is the post for likes/saves and the followee for follows;
// ActorID is the user performing the action.
type Relationship struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"ownerId" db:"owner_id"`
	ActorID   string    `json:"actorId" db:"actor_id"`
	Kind      Kind      `json:"kind" db:"-"`
}

// Outcome describes what a toggle did to the relationship
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeRemoved Outcome = "removed"
)

// ToggleResult is returned by every toggle operation.
// Relationship is only set when the outcome is OutcomeCreated.
type ToggleResult struct {
	Relationship *Relationship `json:"relationship,omitempty"`
	Outcome      Outcome       `json:"outcome"`
}

// Created reports whether the toggle created the relationship
func (r *ToggleResult) Created() bool {
	return r != nil && r.Outcome == OutcomeCreated
}

// Denormalized counter tables and columns
const (
	TablePosts = "posts"
	TableUsers = "users"

	ColumnLikesCount     = "likes_count"
	ColumnSavesCount     = "saves_count"
	ColumnFollowersCount = "followers_count"
	ColumnFolloweesCount = "followees_count"
	ColumnPostCount      = "post_count"
)

// Counter addresses a single denormalized counter cell
type Counter struct {
	Table  string
	Column string
	RowID  string
}

// Drift records a counter that did not match its relationship row count
// when the reconciler recomputed it.
type Drift struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	RowID    string `json:"rowId"`
	Stored   int    `json:"stored"`
	Computed int    `json:"computed"`
}
