package application

import (
	"context"
	"errors"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
)

// DeletionSteps are the individual stages of removing an account. Each step
// may be repeated after a partial failure without changing the outcome.
type DeletionSteps struct {
	users userports.Service
	pets  petports.Service
}

// NewDeletionSteps wires the services the stages operate on.
func NewDeletionSteps(users userports.Service, pets petports.Service) *DeletionSteps {
	return &DeletionSteps{users: users, pets: pets}
}

// DeleteUser removes the user row. A row that is already gone yields a
// DeletedUser with only the id set.
func (d *DeletionSteps) DeleteUser(ctx context.Context, userID int64) (accounttypes.DeletedUser, error) {
	user, err := d.users.Delete(ctx, userID)
	if errors.Is(err, userports.ErrNotFound) {
		return accounttypes.DeletedUser{ID: userID}, nil
	}
	if err != nil {
		return accounttypes.DeletedUser{}, err
	}
	return accounttypes.DeletedUser{ID: user.ID, Username: user.Username, ProfilePhotoRef: user.ProfilePhotoRef}, nil
}

// DeletePets removes every pet row the user owned.
func (d *DeletionSteps) DeletePets(ctx context.Context, userID int64) (accounttypes.DeletedPets, error) {
	pets, err := d.pets.DeleteByOwner(ctx, userID)
	if err != nil {
		return accounttypes.DeletedPets{}, err
	}
	return accounttypes.DeletedPets{Count: len(pets), PhotoRefs: petdomain.PhotoRefs(pets)}, nil
}

// RemovePhotos deletes the given files; missing files are skipped, and so
// are files another member's profile or pet rows still reference.
func (d *DeletionSteps) RemovePhotos(ctx context.Context, refs []string) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	members, err := d.users.Directory(ctx, 0)
	if err != nil {
		return 0, err
	}
	profiles := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.ProfilePhotoRef != "" {
			profiles[m.ProfilePhotoRef] = struct{}{}
		}
	}
	unused := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := profiles[ref]; !ok {
			unused = append(unused, ref)
		}
	}
	if err := d.pets.RemovePhotos(ctx, unused); err != nil {
		return 0, err
	}
	return len(unused), nil
}

// Run executes the stages in order: user row, pet rows, then files.
func (d *DeletionSteps) Run(ctx context.Context, input accounttypes.DeletionInput) (*accounttypes.DeletionSummary, error) {
	user, err := d.DeleteUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	summary := &accounttypes.DeletionSummary{User: user}
	pets, err := d.DeletePets(ctx, input.UserID)
	if err != nil {
		return summary, err
	}
	summary.Pets = pets
	removed, err := d.RemovePhotos(ctx, summary.PhotoRefs())
	if err != nil {
		return summary, err
	}
	summary.PhotosRemoved = removed
	return summary, nil
}
