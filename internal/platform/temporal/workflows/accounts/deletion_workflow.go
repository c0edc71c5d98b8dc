package accounts

import (
	"go.temporal.io/sdk/workflow"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	"github.com/Apurer/pet-community/internal/platform/temporal/sequences"
)

const (
	// AccountDeletionWorkflowName is the public identifier for registering the workflow.
	AccountDeletionWorkflowName = "accounts.workflows.Deletion"
	// AccountDeletionTaskQueue is the queue consumed by the worker processing account deletions.
	AccountDeletionTaskQueue = "ACCOUNT_DELETION"
)

// AccountDeletionWorkflowInput identifies the account to remove.
type AccountDeletionWorkflowInput struct {
	Command accounttypes.DeletionInput
	TraceID string
}

// AccountDeletionWorkflow removes an account so that a crash between the
// user and pet table rewrites resumes instead of leaving orphaned pets.
func AccountDeletionWorkflow(ctx workflow.Context, input AccountDeletionWorkflowInput) (*accounttypes.DeletionSummary, error) {
	logger := workflow.GetLogger(ctx)
	userID := input.Command.UserID
	logger.Info("AccountDeletionWorkflow started", withTraceID(input.TraceID, "userId", userID)...)
	summary, err := sequences.RunAccountDeletionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("AccountDeletionWorkflow failed", withTraceID(input.TraceID, "userId", userID, "error", err)...)
		return nil, err
	}
	logger.Info("AccountDeletionWorkflow completed", withTraceID(input.TraceID, "userId", userID, "pets", summary.Pets.Count)...)
	return summary, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
