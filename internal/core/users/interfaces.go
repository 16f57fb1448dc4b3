package users

import "context"

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// Create returns ErrUsernameTaken on a username or email conflict
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ListTop returns users ordered by post_count descending
	ListTop(ctx context.Context, limit int) ([]*User, error)

	// List pages through users ordered by post_count descending
	List(ctx context.Context, params ListParams) ([]*User, error)

	// ListFollowers returns users following userID, newest follow first
	ListFollowers(ctx context.Context, userID string, params ListParams) ([]*User, error)

	// ListFollowees returns users userID follows, newest follow first
	ListFollowees(ctx context.Context, userID string, params ListParams) ([]*User, error)

	// UpdateProfile writes name, username, bio, image_id and image_url
	UpdateProfile(ctx context.Context, user *User) (*User, error)
}

// UserService defines the interface for user business logic
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListTopUsers returns the most active creators. limit <= 0 means DefaultPageLimit.
	ListTopUsers(ctx context.Context, limit int) ([]*User, error)
	ListUsersPage(ctx context.Context, params ListParams) (*Page, error)
	ListFollowers(ctx context.Context, userID string, params ListParams) (*Page, error)
	ListFollowees(ctx context.Context, userID string, params ListParams) (*Page, error)

	// UpdateProfile edits a profile, replacing the avatar when a file is supplied.
	// Only the user themself may update their profile.
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)
}
