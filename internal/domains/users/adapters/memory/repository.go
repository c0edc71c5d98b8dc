package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu     sync.RWMutex
	users  []domain.User
	nextID int64
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{nextID: 1}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexByUsername(user.Username) >= 0 {
		return nil, ports.ErrUsernameTaken
	}
	stored := *user
	stored.ID = r.nextID
	r.nextID++
	r.users = append(r.users, stored)
	out := stored
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexByID(id)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	out := r.users[i]
	return &out, nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexByUsername(username)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	out := r.users[i]
	return &out, nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexByID(user.ID)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	current := &r.users[i]
	current.PasswordHash = user.PasswordHash
	current.FullName = user.FullName
	current.Email = user.Email
	current.Phone = user.Phone
	current.ProfilePhotoRef = user.ProfilePhotoRef
	out := *current
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexByID(id)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	removed := r.users[i]
	r.users = append(r.users[:i], r.users[i+1:]...)
	return &removed, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.users))
	for i := range r.users {
		u := r.users[i]
		out = append(out, &u)
	}
	return out, nil
}

func (r *Repository) indexByID(id int64) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) indexByUsername(username string) int {
	target := domain.NormalizeUsername(username)
	for i := range r.users {
		if domain.NormalizeUsername(r.users[i].Username) == target {
			return i
		}
	}
	return -1
}
