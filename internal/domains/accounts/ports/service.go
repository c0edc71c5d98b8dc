package ports

import (
	"context"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
)

// Service exposes the signed-in member's own account use cases.
type Service interface {
	// EditForm loads the current profile and pets for the edit page.
	EditForm(ctx context.Context, userID int64) (*accounttypes.EditForm, error)
	// EditProfile validates and applies an edit. The returned form always
	// reflects the submission so it can be shown again; a rejected edit
	// returns a *errors.ValidationError listing every problem.
	EditProfile(ctx context.Context, userID int64, input accounttypes.EditInput) (*accounttypes.EditForm, error)
	// DeleteAccount removes the member, their pets, and every photo those
	// rows referenced.
	DeleteAccount(ctx context.Context, userID int64) (*accounttypes.DeletionSummary, error)
}
