package ports

import (
	"context"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	"github.com/Apurer/pet-community/internal/domains/pets/domain"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	// Reconcile turns submitted pet rows into accepted pets, redisplayable
	// drafts, and per-row errors. It never fails as a whole.
	Reconcile(ctx context.Context, rows []pettypes.RowInput, photoNamePrefix string) pettypes.ReconcileResult
	List(ctx context.Context) ([]*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error)
	CreateForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error)
	// ReplaceForOwner swaps the owner's pets for the accepted set and removes
	// photos that no surviving pet references.
	ReplaceForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error)
	DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error)
	// RemovePhotos deletes files that no stored pet row references.
	RemovePhotos(ctx context.Context, refs []string) error
}
