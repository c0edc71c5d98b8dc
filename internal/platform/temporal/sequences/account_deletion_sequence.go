package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	accountactivities "github.com/Apurer/pet-community/internal/platform/temporal/activities/accounts"
)

// RunAccountDeletionSequence removes the user row, then the pet rows, then
// the files both referenced. Row deletions retry longer than file cleanup.
func RunAccountDeletionSequence(ctx workflow.Context, input accounttypes.DeletionInput) (*accounttypes.DeletionSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("account deletion sequence started", "userId", input.UserID)
	rowOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	fileOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}
	rowCtx := workflow.WithActivityOptions(ctx, rowOptions)

	summary := &accounttypes.DeletionSummary{}
	if err := workflow.ExecuteActivity(rowCtx, accountactivities.DeleteUserActivityName, input).Get(ctx, &summary.User); err != nil {
		logger.Error("account deletion sequence failed to delete user", "userId", input.UserID, "error", err)
		return nil, err
	}
	if err := workflow.ExecuteActivity(rowCtx, accountactivities.DeletePetsActivityName, input).Get(ctx, &summary.Pets); err != nil {
		logger.Error("account deletion sequence failed to delete pets", "userId", input.UserID, "error", err)
		return summary, err
	}
	logger.Info("account deletion sequence removed rows", "userId", input.UserID, "pets", summary.Pets.Count)

	refs := summary.PhotoRefs()
	if len(refs) == 0 {
		return summary, nil
	}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, fileOptions), accountactivities.RemovePhotosActivityName, refs).Get(ctx, &summary.PhotosRemoved); err != nil {
		logger.Error("account deletion sequence failed to remove photos", "userId", input.UserID, "error", err)
		return summary, err
	}
	logger.Info("account deletion sequence removed photos", "userId", input.UserID, "photos", summary.PhotosRemoved)
	return summary, nil
}
