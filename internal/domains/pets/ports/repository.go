package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
)

var ErrNotFound = errors.New("pet not found")

// Repository is the table-like pet store. Mutations rewrite the owner's rows
// as a whole; there is no per-row update.
type Repository interface {
	List(ctx context.Context) ([]*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error)
	CreateForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error)
	// ReplaceForOwner drops every row owned by ownerID and appends the given
	// pets with fresh ids.
	ReplaceForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error)
	// DeleteByOwner removes and returns every row owned by ownerID.
	DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error)
}
