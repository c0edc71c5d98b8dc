package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("that username is already taken. Please choose another")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repository is the users table. Usernames are unique case-insensitively.
type Repository interface {
	// Create assigns the id and creation time.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update rewrites every field except id, username and creation time.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes and returns the user.
	Delete(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
