package accounts

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	accountapp "github.com/Apurer/pet-community/internal/domains/accounts/application"
	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
)

const (
	// DeleteUserActivityName removes the user row of an account.
	DeleteUserActivityName = "accounts.activities.DeleteUser"
	// DeletePetsActivityName removes the pet rows owned by an account.
	DeletePetsActivityName = "accounts.activities.DeletePets"
	// RemovePhotosActivityName deletes the files the removed rows referenced.
	RemovePhotosActivityName = "accounts.activities.RemovePhotos"
)

// Activities groups activities that remove an account.
type Activities struct {
	steps *accountapp.DeletionSteps
}

// NewActivities wires the deletion stages into the Temporal activities bundle.
func NewActivities(steps *accountapp.DeletionSteps) *Activities {
	return &Activities{steps: steps}
}

// DeleteUser removes the user row; an already removed row is not an error.
func (a *Activities) DeleteUser(ctx context.Context, input accounttypes.DeletionInput) (accounttypes.DeletedUser, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		logger.Error("account deletion activity not initialized", "userId", input.UserID)
		return accounttypes.DeletedUser{}, errors.New("account deletion activity not initialized")
	}
	logger.Info("DeleteUser activity started", "userId", input.UserID)
	user, err := a.steps.DeleteUser(ctx, input.UserID)
	if err != nil {
		logger.Error("DeleteUser activity failed", "userId", input.UserID, "error", err)
		return accounttypes.DeletedUser{}, err
	}
	if user.Username == "" {
		logger.Info("DeleteUser found no row; continuing", "userId", input.UserID)
	} else {
		logger.Info("DeleteUser activity completed", "userId", input.UserID, "username", user.Username)
	}
	return user, nil
}

// DeletePets removes the pet rows owned by the account.
func (a *Activities) DeletePets(ctx context.Context, input accounttypes.DeletionInput) (accounttypes.DeletedPets, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		logger.Error("account deletion activity not initialized", "userId", input.UserID)
		return accounttypes.DeletedPets{}, errors.New("account deletion activity not initialized")
	}

	// A retry after the rows were removed would see no pets and lose the
	// photo references, so the first successful result is replayed.
	var hb deletePetsHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("DeletePets already completed in prior attempt; skipping", "userId", input.UserID)
		return hb.Result, nil
	}

	logger.Info("DeletePets activity started", "userId", input.UserID)
	pets, err := a.steps.DeletePets(ctx, input.UserID)
	if err != nil {
		logger.Error("DeletePets activity failed", "userId", input.UserID, "error", err)
		return accounttypes.DeletedPets{}, err
	}
	activity.RecordHeartbeat(ctx, deletePetsHeartbeat{Completed: true, Result: pets})
	logger.Info("DeletePets activity completed", "userId", input.UserID, "count", pets.Count)
	return pets, nil
}

// RemovePhotos deletes stored files, returning how many were requested.
func (a *Activities) RemovePhotos(ctx context.Context, refs []string) (int, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		logger.Error("account deletion activity not initialized")
		return 0, errors.New("account deletion activity not initialized")
	}
	logger.Info("RemovePhotos activity started", "count", len(refs))
	removed, err := a.steps.RemovePhotos(ctx, refs)
	if err != nil {
		logger.Error("RemovePhotos activity failed", "error", err)
		return 0, err
	}
	logger.Info("RemovePhotos activity completed", "count", removed)
	return removed, nil
}

type deletePetsHeartbeat struct {
	Completed bool
	Result    accounttypes.DeletedPets
}
