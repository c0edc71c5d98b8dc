package ports

import (
	"context"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
)

// ProfileUpdate carries an edit of a member's mutable fields. An empty
// PasswordHash keeps the current password.
type ProfileUpdate struct {
	Profile         domain.Profile
	PasswordHash    string
	ProfilePhotoRef string
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	// CheckUsernameAvailable returns ErrUsernameTaken when a member already
	// uses the name in any casing.
	CheckUsernameAvailable(ctx context.Context, username string) error
	Register(ctx context.Context, user *domain.User) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
	// Directory lists every member except excludeID, sorted by username.
	Directory(ctx context.Context, excludeID int64) ([]*domain.User, error)

	// ResumeSession returns the live session for token, or a fresh anonymous
	// session with a new token when token is unknown or expired.
	ResumeSession(ctx context.Context, token string) (*domain.Session, error)
	SaveSession(ctx context.Context, session *domain.Session) error
	EndSession(ctx context.Context, token string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
