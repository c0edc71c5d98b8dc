package application

import (
	"context"
	"errors"
	"fmt"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	accountdomain "github.com/Apurer/pet-community/internal/domains/accounts/domain"
	"github.com/Apurer/pet-community/internal/domains/accounts/ports"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// Service implements profile editing and account removal.
type Service struct {
	users     userports.Service
	pets      petports.Service
	photos    petports.PhotoStore
	deletions ports.DeletionOrchestrator
}

// NewService wires the account use cases.
func NewService(users userports.Service, pets petports.Service, photos petports.PhotoStore, deletions ports.DeletionOrchestrator) *Service {
	return &Service{users: users, pets: pets, photos: photos, deletions: deletions}
}

func (s *Service) EditForm(ctx context.Context, userID int64) (*accounttypes.EditForm, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pets, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	form := &accounttypes.EditForm{
		Username:        user.Username,
		Profile:         user.Profile(),
		ProfilePhotoRef: user.ProfilePhotoRef,
		Pets:            pettypes.DraftsFromPets(pets),
	}
	return form.WithBlankRow(), nil
}

// EditProfile collects every problem of the submission before writing
// anything. Photos uploaded by a rejected submission stay on disk so the
// next attempt can carry them over.
func (s *Service) EditProfile(ctx context.Context, userID int64, input accounttypes.EditInput) (*accounttypes.EditForm, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	persistedPhoto := user.ProfilePhotoRef
	username := userdomain.NormalizeUsername(user.Username)
	profile := input.Profile.Normalize()
	form := &accounttypes.EditForm{
		Username:        user.Username,
		Profile:         profile,
		ProfilePhotoRef: accountdomain.CarriedPhotoRef(input.CarriedProfilePhotoRef, persistedPhoto, username),
	}
	current, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	problems := sharederrors.ValidationFrom(profile.Problems()...)
	if input.NewPassword != "" && len(input.NewPassword) < userdomain.MinPasswordLength {
		problems.Add(sharederrors.Sentence(userdomain.ErrWeakNewPassword.Error()))
	}
	if input.ProfilePhoto.Attached() {
		previous := form.ProfilePhotoRef
		ref, err := s.photos.Store(ctx, input.ProfilePhoto, upload.CategoryProfiles, accountdomain.ProfileEditSeed(username))
		if err != nil {
			problems.Add(sharederrors.Sentence(err.Error()))
		} else {
			form.ProfilePhotoRef = ref
			if previous != "" && previous != persistedPhoto && previous != ref {
				_ = s.photos.Remove(ctx, previous)
			}
		}
	}

	prefix := accountdomain.PetPhotoPrefix(username)
	rows := pettypes.ClaimPhotos(input.Rows, petdomain.PhotoRefs(current), prefix)
	result := s.pets.Reconcile(ctx, rows, prefix)
	problems.Add(result.Errors...)
	form.Pets = result.Drafts
	form.WithBlankRow()
	if len(result.Accepted) == 0 {
		problems.Add(sharederrors.Sentence(petdomain.ErrNoPets.Error()))
	}
	if !problems.Empty() {
		return form, problems
	}

	var hash string
	if input.NewPassword != "" {
		if hash, err = userdomain.HashPassword(input.NewPassword); err != nil {
			return form, updateFailed(err)
		}
	}
	if _, err := s.users.UpdateProfile(ctx, userID, userports.ProfileUpdate{
		Profile:         profile,
		PasswordHash:    hash,
		ProfilePhotoRef: form.ProfilePhotoRef,
	}); err != nil {
		return form, updateFailed(err)
	}
	// ReplaceForOwner removes pet photos the new set no longer references.
	saved, err := s.pets.ReplaceForOwner(ctx, userID, result.Accepted)
	if err != nil {
		return form, updateFailed(err)
	}
	form.Pets = pettypes.DraftsFromPets(saved)
	for _, stale := range accountdomain.SupersededPhotos([]string{persistedPhoto}, []string{form.ProfilePhotoRef}) {
		_ = s.photos.Remove(ctx, stale)
	}
	return form, nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID int64) (*accounttypes.DeletionSummary, error) {
	if s.deletions == nil {
		return nil, errors.New("account deletion not configured")
	}
	summary, err := s.deletions.DeleteAccount(ctx, accounttypes.DeletionInput{UserID: userID})
	if err != nil {
		return summary, fmt.Errorf("delete account %d: %w", userID, err)
	}
	return summary, nil
}

// updateFailed keeps the cause for logs while showing the generic message.
func updateFailed(cause error) error {
	return errors.Join(sharederrors.ValidationFrom(accountdomain.ErrUpdateFailed), accountdomain.ErrUpdateFailed, cause)
}

var _ ports.Service = (*Service)(nil)
