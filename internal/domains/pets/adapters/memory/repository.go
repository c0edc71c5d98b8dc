package memory

import (
	"context"
	"sync"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu     sync.RWMutex
	pets   []domain.Pet
	nextID int64
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{nextID: 1}
}

// List returns every pet in insertion order.
func (r *Repository) List(_ context.Context) ([]*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Pet, 0, len(r.pets))
	for i := range r.pets {
		p := r.pets[i]
		out = append(out, &p)
	}
	return out, nil
}

// ListByOwner returns the owner's pets in insertion order.
func (r *Repository) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Pet
	for i := range r.pets {
		if r.pets[i].OwnerID == ownerID {
			p := r.pets[i]
			out = append(out, &p)
		}
	}
	return out, nil
}

// CreateForOwner appends new rows.
func (r *Repository) CreateForOwner(_ context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(ownerID, pets), nil
}

// ReplaceForOwner filters out the owner's rows and appends the new set.
func (r *Repository) ReplaceForOwner(_ context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(ownerID)
	return r.appendLocked(ownerID, pets), nil
}

// DeleteByOwner removes and returns the owner's rows.
func (r *Repository) DeleteByOwner(_ context.Context, ownerID int64) ([]*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(ownerID), nil
}

func (r *Repository) appendLocked(ownerID int64, pets []domain.Details) []*domain.Pet {
	out := make([]*domain.Pet, 0, len(pets))
	for _, d := range pets {
		p := domain.Pet{ID: r.nextID, OwnerID: ownerID, Details: d}
		r.nextID++
		r.pets = append(r.pets, p)
		out = append(out, &p)
	}
	return out
}

func (r *Repository) removeLocked(ownerID int64) []*domain.Pet {
	var removed []*domain.Pet
	kept := r.pets[:0]
	for _, p := range r.pets {
		if p.OwnerID == ownerID {
			removed = append(removed, &p)
			continue
		}
		kept = append(kept, p)
	}
	r.pets = kept
	return removed
}
