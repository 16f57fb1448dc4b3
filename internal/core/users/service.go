package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/metrics"
)

// Usernames: 2-30 characters of letters, digits, underscores and dots
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{2,30}$`)

type userService struct {
	userRepo UserRepository
	blobs    blobs.Service
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, blobService blobs.Service, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		blobs:    blobService,
		logger:   logger,
	}
}

// CreateUser creates a new user row. An empty ID gets a fresh UUID.
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, &InvalidEmailError{Email: req.Email}
	}
	if req.Name == "" {
		return nil, NewValidationError("name", "required")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// Repository will handle duplicate constraint errors
	return s.userRepo.Create(ctx, &User{
		ID:       req.ID,
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
}

func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("userId", "required")
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, NewValidationError("username", "required")
	}
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *userService) ListTopUsers(ctx context.Context, limit int) ([]*User, error) {
	limit = normalizeParams(ListParams{Limit: limit}).Limit
	rows, err := s.userRepo.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top users: %w", err)
	}
	return rows, nil
}

func (s *userService) ListUsersPage(ctx context.Context, params ListParams) (*Page, error) {
	params = normalizeParams(params)
	rows, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return newPage(rows, params.Limit), nil
}

func (s *userService) ListFollowers(ctx context.Context, userID string, params ListParams) (*Page, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	params = normalizeParams(params)
	rows, err := s.userRepo.ListFollowers(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return newPage(rows, params.Limit), nil
}

func (s *userService) ListFollowees(ctx context.Context, userID string, params ListParams) (*Page, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	params = normalizeParams(params)
	rows, err := s.userRepo.ListFollowees(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list followees: %w", err)
	}
	return newPage(rows, params.Limit), nil
}

// UpdateProfile edits a user's profile
// Flow:
// 1. Validate input and check the actor owns the profile
// 2. Fetch the current row (not found propagates)
// 3. If a non-empty file is supplied: upload it and derive the avatar URL
// 4. Write the row; on failure delete only the new avatar
// 5. After a successful write with a new file, delete the old avatar
func (s *userService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	if req.ActorID != req.UserID {
		return nil, ErrNotAuthorized
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, NewValidationError("name", "required")
	}
	if len([]rune(req.Bio)) > MaxBioLength {
		return nil, NewValidationError("bio", fmt.Sprintf("must be at most %d characters", MaxBioLength))
	}

	existing, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = req.Name
	updated.Username = req.Username
	updated.Bio = req.Bio

	hasNewFile := !req.File.Empty()
	if hasNewFile {
		asset, err := s.blobs.Upload(ctx, req.File.Data, req.File.ContentType)
		if err != nil {
			if errors.Is(err, blobs.ErrUnsupportedType) || errors.Is(err, blobs.ErrTooLarge) {
				return nil, NewValidationError("file", err.Error())
			}
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		updated.ImageID = asset.ID
		updated.ImageURL = s.blobs.PreviewURL(asset.ID, blobs.AvatarPreview)
		if updated.ImageURL == "" {
			s.compensate(ctx, asset.ID)
			return nil, fmt.Errorf("failed to derive avatar URL for asset %s", asset.ID)
		}
	}

	result, err := s.userRepo.UpdateProfile(ctx, &updated)
	if err != nil || result == nil {
		if hasNewFile {
			s.compensate(ctx, updated.ImageID)
		}
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		if err != nil {
			s.logger.Error("profile update failed", "error", err, "user", req.UserID)
			return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
		}
		return nil, ErrUpdateFailed
	}

	if hasNewFile && existing.ImageID != "" {
		if err := s.blobs.Delete(ctx, existing.ImageID); err != nil {
			metrics.LeakedAssets.Inc()
			s.logger.Warn("failed to delete replaced avatar", "error", err, "user", req.UserID, "asset", existing.ImageID)
		}
	}

	s.logger.Info("profile updated", "user", req.UserID, "new_avatar", hasNewFile)
	return result, nil
}

func (s *userService) compensate(ctx context.Context, assetID string) {
	if err := s.blobs.Delete(ctx, assetID); err != nil {
		metrics.Compensations.WithLabelValues("profile", "failed").Inc()
		metrics.LeakedAssets.Inc()
		s.logger.Error("compensating avatar delete failed", "error", err, "asset", assetID)
		return
	}
	metrics.Compensations.WithLabelValues("profile", "deleted").Inc()
}

func validateUsername(username string) error {
	if username == "" {
		return &InvalidUsernameError{Username: username, Reason: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return &InvalidUsernameError{Username: username, Reason: "must be 2-30 letters, digits, underscores or dots"}
	}
	return nil
}
