package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/metrics"
)

type postService struct {
	repo     Repository
	blobs    blobs.Service
	counters relationships.CounterStore
	logger   *slog.Logger
}

// NewPostService creates a new post service.
// counters maintains users.post_count; it can be nil in tests that don't care about it.
func NewPostService(repo Repository, blobService blobs.Service, counters relationships.CounterStore, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:     repo,
		blobs:    blobService,
		counters: counters,
		logger:   logger,
	}
}

// CreatePost creates a new post
// Flow:
// 1. Validate input
// 2. If a non-empty file is supplied: upload it and derive the preview URL
// 3. Create the row; on failure delete the uploaded asset exactly once
// 4. Increment the creator's post_count
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := validateContent(req.CreatorID, "creatorId", req.Caption); err != nil {
		return nil, err
	}

	post := &Post{
		CreatorID: req.CreatorID,
		Caption:   req.Caption,
		Location:  normalizeLocation(req.Location),
		Tags:      normalizeTags(req.Tags),
	}

	var assetID string
	if !req.File.Empty() {
		asset, imageURL, err := s.upload(ctx, req.File)
		if err != nil {
			return nil, err
		}
		assetID = asset.ID
		post.ImageID = asset.ID
		post.ImageURL = imageURL
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil || created == nil || created.ID == "" {
		s.compensate(ctx, "create", assetID)
		if err != nil {
			s.logger.Error("post create failed", "error", err, "creator", req.CreatorID)
			return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
		}
		return nil, ErrCreationFailed
	}

	s.adjustPostCount(ctx, created.CreatorID, 1)

	s.logger.Info("post created", "post", created.ID, "creator", created.CreatorID, "asset", assetID)
	return created, nil
}

// UpdatePost edits an existing post
// Flow:
// 1. Fetch existing row (not found propagates)
// 2. Authorization: actor must be the creator, otherwise nothing is touched
// 3. If a non-empty file is supplied: upload it and derive the preview URL
// 4. Write the row; on failure delete only the new asset
// 5. After a successful write with a new file, delete the old asset
func (s *postService) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if strings.TrimSpace(req.PostID) == "" {
		return nil, NewValidationError("postId", "required")
	}
	caption := ""
	if req.Caption != nil {
		caption = *req.Caption
	}
	if err := validateContent(req.ActorID, "actorId", caption); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if existing.CreatorID != req.ActorID {
		return nil, ErrNotAuthorized
	}

	updated := *existing
	if req.Caption != nil {
		updated.Caption = *req.Caption
	}
	if req.Location != nil {
		updated.Location = normalizeLocation(req.Location)
	}
	if req.Tags != nil {
		updated.Tags = normalizeTags(req.Tags)
	}

	hasNewFile := !req.File.Empty()
	if hasNewFile {
		asset, imageURL, err := s.upload(ctx, req.File)
		if err != nil {
			return nil, err
		}
		updated.ImageID = asset.ID
		updated.ImageURL = imageURL
	}

	result, err := s.repo.Update(ctx, &updated)
	if err != nil || result == nil || result.ID == "" {
		if hasNewFile {
			s.compensate(ctx, "update", updated.ImageID)
		}
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, err
			}
			s.logger.Error("post update failed", "error", err, "post", req.PostID)
			return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
		}
		return nil, ErrUpdateFailed
	}

	if hasNewFile && existing.ImageID != "" {
		if err := s.blobs.Delete(ctx, existing.ImageID); err != nil {
			metrics.LeakedAssets.Inc()
			s.logger.Warn("failed to delete replaced post image",
				"error", err,
				"post", existing.ID,
				"asset", existing.ImageID)
		}
	}

	s.logger.Info("post updated", "post", result.ID, "new_image", hasNewFile)
	return result, nil
}

// DeletePost removes a post and its image
// Flow:
// 1. Fetch existing row and check the actor is its creator
// 2. Delete the row
// 3. Delete the asset; a failure here leaks the asset and is only logged
// 4. Decrement the creator's post_count
func (s *postService) DeletePost(ctx context.Context, postID, actorID string) error {
	if strings.TrimSpace(postID) == "" {
		return NewValidationError("postId", "required")
	}
	if strings.TrimSpace(actorID) == "" {
		return NewValidationError("actorId", "required")
	}

	existing, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if existing.CreatorID != actorID {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if existing.ImageID != "" {
		if err := s.blobs.Delete(ctx, existing.ImageID); err != nil {
			metrics.LeakedAssets.Inc()
			s.logger.Warn("post deleted but image could not be removed",
				"error", err,
				"post", postID,
				"asset", existing.ImageID)
		}
	}

	s.adjustPostCount(ctx, existing.CreatorID, -1)

	s.logger.Info("post deleted", "post", postID, "creator", existing.CreatorID)
	return nil
}

func (s *postService) GetPost(ctx context.Context, postID string) (*Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}
	return s.repo.GetByID(ctx, postID)
}

func (s *postService) GetPostForEdit(ctx context.Context, postID, actorID string) (*Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != actorID {
		return nil, ErrNotAuthorized
	}
	return post, nil
}

func (s *postService) ListRecent(ctx context.Context) ([]*Post, error) {
	rows, err := s.repo.List(ctx, ListParams{Limit: RecentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}
	return rows, nil
}

func (s *postService) ListPage(ctx context.Context, params ListParams) (*Page, error) {
	params = normalizeParams(params)
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return NewPage(rows, params.Limit), nil
}

// Search returns posts whose caption contains term. An empty term returns no posts.
func (s *postService) Search(ctx context.Context, term string) ([]*Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*Post{}, nil
	}
	rows, err := s.repo.Search(ctx, term, MaxPageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return rows, nil
}

func (s *postService) ListSaved(ctx context.Context, userID string, params ListParams) (*Page, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	params = normalizeParams(params)
	rows, err := s.repo.ListSaved(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved posts: %w", err)
	}
	return NewPage(rows, params.Limit), nil
}

func (s *postService) ListByCreator(ctx context.Context, creatorID string, params ListParams) (*Page, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	params = normalizeParams(params)
	rows, err := s.repo.ListByCreator(ctx, creatorID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator posts: %w", err)
	}
	return NewPage(rows, params.Limit), nil
}

// upload stores the file and derives its preview URL.
// If no URL can be derived the asset is deleted before returning.
func (s *postService) upload(ctx context.Context, file *blobs.File) (*blobs.Asset, string, error) {
	asset, err := s.blobs.Upload(ctx, file.Data, file.ContentType)
	if err != nil {
		if errors.Is(err, blobs.ErrUnsupportedType) || errors.Is(err, blobs.ErrTooLarge) {
			return nil, "", NewValidationError("file", err.Error())
		}
		return nil, "", fmt.Errorf("failed to upload image: %w", err)
	}

	imageURL := s.blobs.PreviewURL(asset.ID, blobs.PostPreview)
	if imageURL == "" {
		s.compensate(ctx, "preview", asset.ID)
		return nil, "", fmt.Errorf("failed to derive preview URL for asset %s", asset.ID)
	}
	return asset, imageURL, nil
}

// compensate deletes an asset whose row write failed
func (s *postService) compensate(ctx context.Context, operation, assetID string) {
	if assetID == "" {
		return
	}
	if err := s.blobs.Delete(ctx, assetID); err != nil {
		metrics.Compensations.WithLabelValues(operation, "failed").Inc()
		metrics.LeakedAssets.Inc()
		s.logger.Error("compensating asset delete failed",
			"error", err,
			"operation", operation,
			"asset", assetID)
		return
	}
	metrics.Compensations.WithLabelValues(operation, "deleted").Inc()
	s.logger.Info("compensating asset delete", "operation", operation, "asset", assetID)
}

func (s *postService) adjustPostCount(ctx context.Context, userID string, delta int) {
	if s.counters == nil {
		return
	}
	counter := relationships.Counter{
		Table:  relationships.TableUsers,
		Column: relationships.ColumnPostCount,
		RowID:  userID,
	}
	var err error
	if delta > 0 {
		err = s.counters.Increment(ctx, counter, delta)
	} else {
		err = s.counters.Decrement(ctx, counter, -delta)
	}
	if err != nil {
		s.logger.Error("failed to adjust post_count", "error", err, "user", userID, "delta", delta)
	}
}

func validateContent(actorID, actorField, caption string) error {
	if strings.TrimSpace(actorID) == "" {
		return NewValidationError(actorField, "required")
	}
	if len([]rune(caption)) > MaxCaptionLength {
		return NewValidationError("caption", fmt.Sprintf("must be at most %d characters", MaxCaptionLength))
	}
	return nil
}

func normalizeLocation(location *string) *string {
	if location == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*location)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeParams(params ListParams) ListParams {
	return ListParams{
		Cursor: NormalizeCursor(params.Cursor),
		Limit:  ClampLimit(params.Limit),
	}
}
