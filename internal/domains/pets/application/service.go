package application

import (
	"context"
	"errors"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo       ports.Repository
	photos     ports.PhotoStore
	reconciler *Reconciler
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, photos ports.PhotoStore) *Service {
	return &Service{repo: repo, photos: photos, reconciler: NewReconciler(photos)}
}

// Reconcile validates submitted pet rows; see Reconciler.Reconcile.
func (s *Service) Reconcile(ctx context.Context, rows []pettypes.RowInput, photoNamePrefix string) pettypes.ReconcileResult {
	return s.reconciler.Reconcile(ctx, rows, photoNamePrefix)
}

// List returns every pet in storage order.
func (s *Service) List(ctx context.Context) ([]*domain.Pet, error) {
	return s.repo.List(ctx)
}

// ListByOwner returns the pets belonging to one member.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// CreateForOwner appends the accepted pets for a newly registered member.
func (s *Service) CreateForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error) {
	details, err := validDetails(accepted)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.CreateForOwner(ctx, ownerID, details)
}

// ReplaceForOwner swaps the owner's pets and removes photos that only the
// replaced rows referenced.
func (s *Service) ReplaceForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error) {
	details, err := validDetails(accepted)
	if err != nil {
		return nil, mapError(err)
	}
	previous, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.ReplaceForOwner(ctx, ownerID, details)
	if err != nil {
		return nil, err
	}
	kept := make(map[string]struct{}, len(saved))
	for _, ref := range domain.PhotoRefs(saved) {
		kept[ref] = struct{}{}
	}
	var stale []string
	for _, ref := range domain.PhotoRefs(previous) {
		if _, ok := kept[ref]; !ok {
			stale = append(stale, ref)
		}
	}
	if err := s.RemovePhotos(ctx, stale); err != nil {
		return saved, err
	}
	return saved, nil
}

// DeleteByOwner removes the owner's rows and returns them so callers can
// clean up their photos.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	return s.repo.DeleteByOwner(ctx, ownerID)
}

// RemovePhotos deletes the referenced files, continuing past failures. A
// file that any stored pet row still references is kept.
func (s *Service) RemovePhotos(ctx context.Context, refs []string) error {
	if s.photos == nil || len(refs) == 0 {
		return nil
	}
	pets, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	inUse := make(map[string]struct{}, len(pets))
	for _, ref := range domain.PhotoRefs(pets) {
		inUse[ref] = struct{}{}
	}
	var errs []error
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, ok := inUse[ref]; ok {
			continue
		}
		if err := s.photos.Remove(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validDetails(accepted []pettypes.AcceptedPet) ([]domain.Details, error) {
	details := pettypes.DetailsOf(accepted)
	for _, d := range details {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return details, nil
}

var _ ports.Service = (*Service)(nil)
