package ports

import (
	"context"
	"time"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// Credentials is the step 1 form.
type Credentials struct {
	Username     string
	Password     string
	Confirmation string
}

// Service drives the sign-up wizard. Every step keys its state by the
// visitor's session token. Form problems are returned as
// *errors.ValidationError.
type Service interface {
	Draft(ctx context.Context, key string) (*domain.Draft, error)
	// Gate returns the step the visitor must complete before step, or 0.
	Gate(ctx context.Context, key string, step int) (int, error)
	SubmitCredentials(ctx context.Context, key string, in Credentials) error
	SubmitPersonal(ctx context.Context, key string, profile userdomain.Profile) error
	SubmitProfilePhoto(ctx context.Context, key string, file upload.File) error
	// SubmitPets always returns the reconciliation for redisplay; the draft
	// only changes when the result has no errors.
	SubmitPets(ctx context.Context, key string, rows []pettypes.RowInput) (pettypes.ReconcileResult, error)
	// Complete creates the member and their pets, then clears the draft.
	Complete(ctx context.Context, key string) (*userdomain.User, error)
	Discard(ctx context.Context, key string) error
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
