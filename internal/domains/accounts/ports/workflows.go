package ports

import (
	"context"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
)

// DeletionOrchestrator runs the multi-step removal of an account.
type DeletionOrchestrator interface {
	DeleteAccount(ctx context.Context, input accounttypes.DeletionInput) (*accounttypes.DeletionSummary, error)
}
