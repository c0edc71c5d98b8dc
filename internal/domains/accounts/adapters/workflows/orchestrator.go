package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	accountapp "github.com/Apurer/pet-community/internal/domains/accounts/application"
	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	"github.com/Apurer/pet-community/internal/domains/accounts/ports"
	accountworkflows "github.com/Apurer/pet-community/internal/platform/temporal/workflows/accounts"
)

var (
	_ ports.DeletionOrchestrator = (*TemporalDeletionWorkflows)(nil)
	_ ports.DeletionOrchestrator = (*InlineDeletionWorkflows)(nil)
)

// TemporalDeletionWorkflows starts account deletions on a Temporal cluster.
type TemporalDeletionWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDeletionWorkflows wires a Temporal client into the orchestrator.
func NewTemporalDeletionWorkflows(c client.Client) *TemporalDeletionWorkflows {
	return &TemporalDeletionWorkflows{client: c, taskQueue: accountworkflows.AccountDeletionTaskQueue}
}

// DeleteAccount starts the deletion workflow and waits for its result. A
// deletion already running for the same member is joined instead.
func (o *TemporalDeletionWorkflows) DeleteAccount(ctx context.Context, input accounttypes.DeletionInput) (*accounttypes.DeletionSummary, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal account workflows not configured")
	}
	workflowID := DeletionWorkflowID(input.UserID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		accountworkflows.AccountDeletionWorkflowName,
		accountworkflows.AccountDeletionWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var summary accounttypes.DeletionSummary
	if err := run.Get(ctx, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// InlineDeletionWorkflows runs the deletion stages in-process, useful for
// tests or when no Temporal cluster is configured.
type InlineDeletionWorkflows struct {
	steps *accountapp.DeletionSteps
}

// NewInlineDeletionWorkflows wraps the deletion stages for synchronous execution.
func NewInlineDeletionWorkflows(steps *accountapp.DeletionSteps) *InlineDeletionWorkflows {
	return &InlineDeletionWorkflows{steps: steps}
}

// DeleteAccount runs every stage in order without durable orchestration.
func (o *InlineDeletionWorkflows) DeleteAccount(ctx context.Context, input accounttypes.DeletionInput) (*accounttypes.DeletionSummary, error) {
	if o == nil || o.steps == nil {
		return nil, errors.New("inline account workflows not configured")
	}
	return o.steps.Run(ctx, input)
}

// DeletionWorkflowID is stable per member so concurrent requests share a run.
func DeletionWorkflowID(userID int64) string {
	return fmt.Sprintf("account-deletion-%d", userID)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
