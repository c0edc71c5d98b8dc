package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	"github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-community/internal/domains/pets/ports"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// Service walks a visitor through sign-up.
type Service struct {
	drafts ports.DraftStore
	users  userports.Service
	pets   petports.Service
	photos petports.PhotoStore
	now    func() time.Time
}

// NewService wires the wizard with the stores and services it drives.
func NewService(drafts ports.DraftStore, users userports.Service, pets petports.Service, photos petports.PhotoStore) *Service {
	return &Service{drafts: drafts, users: users, pets: pets, photos: photos, now: time.Now}
}

func (s *Service) Draft(ctx context.Context, key string) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, key)
	if errors.Is(err, ports.ErrDraftNotFound) {
		return &domain.Draft{}, nil
	}
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *Service) Gate(ctx context.Context, key string, step int) (int, error) {
	draft, err := s.Draft(ctx, key)
	if err != nil {
		return 0, err
	}
	return draft.FirstIncompleteBefore(step), nil
}

func (s *Service) SubmitCredentials(ctx context.Context, key string, in ports.Credentials) error {
	username, err := userdomain.ValidateUsername(in.Username)
	if err != nil {
		return sharederrors.ValidationFrom(err)
	}
	if err := userdomain.ValidatePassword(in.Password, in.Confirmation); err != nil {
		return sharederrors.ValidationFrom(err)
	}
	if err := s.users.CheckUsernameAvailable(ctx, username); err != nil {
		if errors.Is(err, userports.ErrUsernameTaken) {
			return sharederrors.ValidationFrom(err)
		}
		return err
	}
	hash, err := userdomain.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.update(ctx, key, func(d *domain.Draft) error {
		d.Username = username
		d.PasswordHash = hash
		return nil
	})
}

func (s *Service) SubmitPersonal(ctx context.Context, key string, profile userdomain.Profile) error {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return sharederrors.ValidationFrom(err)
	}
	return s.update(ctx, key, func(d *domain.Draft) error {
		d.FullName = profile.FullName
		d.Email = profile.Email
		d.Phone = profile.Phone
		return nil
	})
}

// SubmitProfilePhoto stores a newly attached photo, replacing the one kept
// in the draft. Without an attachment the draft's photo is kept; a draft
// without any photo is rejected. The replaced photo is removed only once the
// draft pointing at the new one is saved.
func (s *Service) SubmitProfilePhoto(ctx context.Context, key string, file upload.File) error {
	draft, err := s.Draft(ctx, key)
	if err != nil {
		return err
	}
	var stored, superseded string
	if file.Attached() {
		ref, err := s.photos.Store(ctx, file, upload.CategoryProfiles, userdomain.NormalizeUsername(draft.Username)+"_profile")
		if err != nil {
			return sharederrors.ValidationFrom(err)
		}
		stored = ref
		if previous := draft.ProfilePhotoRef; previous != "" && previous != ref {
			superseded = previous
		}
		draft.ProfilePhotoRef = ref
	}
	if draft.ProfilePhotoRef == "" {
		return sharederrors.ValidationFrom(userdomain.ErrEmptyPhoto)
	}
	if err := s.drafts.Save(ctx, key, draft); err != nil {
		if stored != "" {
			_ = s.photos.Remove(ctx, stored)
		}
		return fmt.Errorf("save onboarding draft: %w", err)
	}
	if superseded != "" {
		_ = s.photos.Remove(ctx, superseded)
	}
	return nil
}

// SubmitPets reconciles the pet rows. Carried photo references are only
// honoured for photos this draft already holds or uploaded under its
// username.
func (s *Service) SubmitPets(ctx context.Context, key string, rows []pettypes.RowInput) (pettypes.ReconcileResult, error) {
	draft, err := s.Draft(ctx, key)
	if err != nil {
		return pettypes.ReconcileResult{}, err
	}
	prefix := userdomain.NormalizeUsername(draft.Username) + "_pet"
	rows = pettypes.ClaimPhotos(rows, pettypes.PhotoRefsOf(draft.Pets), prefix)
	result := s.pets.Reconcile(ctx, rows, prefix)
	if len(result.Accepted) == 0 {
		result.Errors = append(result.Errors, sharederrors.Sentence(petdomain.ErrNoPets.Error()))
	}
	if !result.OK() {
		return result, nil
	}
	draft.Pets = result.Accepted
	if err := s.drafts.Save(ctx, key, draft); err != nil {
		return result, fmt.Errorf("save onboarding draft: %w", err)
	}
	return result, nil
}

// Complete registers the member from a finished draft. When the pets cannot
// be saved the new user row is removed again so the visitor can retry.
func (s *Service) Complete(ctx context.Context, key string) (*userdomain.User, error) {
	draft, err := s.Draft(ctx, key)
	if err != nil {
		return nil, err
	}
	if draft.FirstIncompleteBefore(domain.FinalStep) != 0 || draft.Username == "" || len(draft.Pets) == 0 {
		return nil, domain.ErrIncomplete
	}
	if err := s.users.CheckUsernameAvailable(ctx, draft.Username); err != nil {
		return nil, err
	}
	user, err := s.users.Register(ctx, &userdomain.User{
		Username:        draft.Username,
		PasswordHash:    draft.PasswordHash,
		FullName:        draft.FullName,
		Email:           draft.Email,
		Phone:           draft.Phone,
		ProfilePhotoRef: draft.ProfilePhotoRef,
	})
	if err != nil {
		return nil, fmt.Errorf("register member: %w", err)
	}
	if _, err := s.pets.CreateForOwner(ctx, user.ID, draft.Pets); err != nil {
		if _, undoErr := s.users.Delete(ctx, user.ID); undoErr != nil {
			err = errors.Join(err, undoErr)
		}
		return nil, fmt.Errorf("save pets: %w", err)
	}
	if err := s.drafts.Delete(ctx, key); err != nil {
		return user, fmt.Errorf("clear onboarding draft: %w", err)
	}
	return user, nil
}

func (s *Service) Discard(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.drafts.Delete(ctx, key)
}

func (s *Service) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.drafts.PurgeStale(ctx, s.now().Add(-olderThan))
}

// update loads the draft, applies fn and saves the result. Nothing is saved
// when fn fails.
func (s *Service) update(ctx context.Context, key string, fn func(*domain.Draft) error) error {
	draft, err := s.Draft(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(draft); err != nil {
		return err
	}
	if err := s.drafts.Save(ctx, key, draft); err != nil {
		return fmt.Errorf("save onboarding draft: %w", err)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
