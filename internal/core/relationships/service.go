package relationships

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Snapgram/internal/metrics"
)

type relationshipService struct {
	repo      Repository
	reconcile ReconcileRepository
	toggler   *Toggler
	logger    *slog.Logger
}

// NewService creates a new relationship service.
// reconcile can be nil when counter reconciliation isn't needed (e.g. in tests).
func NewService(repo Repository, counters CounterStore, reconcile ReconcileRepository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &relationshipService{
		repo:      repo,
		reconcile: reconcile,
		toggler:   NewToggler(repo, counters, logger),
		logger:    logger,
	}
}

// ToggleLike flips the like of userID on postID
func (s *relationshipService) ToggleLike(ctx context.Context, postID, userID string) (*ToggleResult, error) {
	if err := validatePair("postId", postID, "userId", userID); err != nil {
		return nil, err
	}
	return s.toggler.Toggle(ctx, KindLike, postID, userID, []Counter{
		{Table: TablePosts, Column: ColumnLikesCount, RowID: postID},
	})
}

// ToggleSave flips the save of userID on postID
func (s *relationshipService) ToggleSave(ctx context.Context, postID, userID string) (*ToggleResult, error) {
	if err := validatePair("postId", postID, "userId", userID); err != nil {
		return nil, err
	}
	return s.toggler.Toggle(ctx, KindSave, postID, userID, []Counter{
		{Table: TablePosts, Column: ColumnSavesCount, RowID: postID},
	})
}

// ToggleFollow flips whether followerID follows followeeID.
// Both users' counters move together: followers_count on the followee,
// followees_count on the follower.
func (s *relationshipService) ToggleFollow(ctx context.Context, followeeID, followerID string) (*ToggleResult, error) {
	if err := validatePair("followeeId", followeeID, "followerId", followerID); err != nil {
		return nil, err
	}
	if followeeID == followerID {
		return nil, ErrSelfFollow
	}
	return s.toggler.Toggle(ctx, KindFollow, followeeID, followerID, []Counter{
		{Table: TableUsers, Column: ColumnFollowersCount, RowID: followeeID},
		{Table: TableUsers, Column: ColumnFolloweesCount, RowID: followerID},
	})
}

func (s *relationshipService) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	return s.exists(ctx, KindLike, postID, userID)
}

func (s *relationshipService) IsSaved(ctx context.Context, postID, userID string) (bool, error) {
	return s.exists(ctx, KindSave, postID, userID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, followeeID, followerID string) (bool, error) {
	return s.exists(ctx, KindFollow, followeeID, followerID)
}

func (s *relationshipService) GetRelationship(ctx context.Context, kind Kind, ownerID, actorID string) (*Relationship, error) {
	if !kind.Valid() {
		return nil, NewValidationError("kind", "unknown relationship kind")
	}
	if err := validatePair("ownerId", ownerID, "actorId", actorID); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, kind, ownerID, actorID)
}

// Reconcile recomputes every denormalized counter from its relationship rows
func (s *relationshipService) Reconcile(ctx context.Context) ([]Drift, error) {
	if s.reconcile == nil {
		return nil, fmt.Errorf("counter reconciliation not configured")
	}

	drifts, err := s.reconcile.RecountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile counters: %w", err)
	}

	for _, d := range drifts {
		metrics.CounterDrift.WithLabelValues(d.Table, d.Column).Inc()
		s.logger.Warn("counter drift corrected",
			"table", d.Table,
			"column", d.Column,
			"row", d.RowID,
			"stored", d.Stored,
			"computed", d.Computed)
	}

	s.logger.Info("counter reconciliation finished", "corrected", len(drifts))
	return drifts, nil
}

func (s *relationshipService) exists(ctx context.Context, kind Kind, ownerID, actorID string) (bool, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(actorID) == "" {
		return false, nil
	}

	rel, err := s.repo.Find(ctx, kind, ownerID, actorID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	return rel != nil, nil
}

func validatePair(ownerField, ownerID, actorField, actorID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return NewValidationError(ownerField, "required")
	}
	if strings.TrimSpace(actorID) == "" {
		return NewValidationError(actorField, "required")
	}
	return nil
}
