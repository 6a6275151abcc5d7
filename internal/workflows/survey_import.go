package workflows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/wellpath/internal/core/domain"
)

// Activity names registered by SurveyImportActivities.
const (
	ProcessImportActivity = "ProcessImport"
	WarmGeometryActivity  = "WarmGeometry"
)

// SurveyImportInput is the input for the survey import workflow.
type SurveyImportInput struct {
	WellID  string
	Payload domain.SurveyPayload
}

// SurveyImportResult summarises a finished import.
type SurveyImportResult struct {
	ImportID     string
	TrajectoryID string
	Stations     int
	Geometry     int
	// Warmed is false when the geometry could not be precomputed. The
	// import itself is kept either way.
	Warmed bool
}

// SurveyImportWorkflow processes a survey and then warms the geometry cache
// of the new trajectory. Rejected surveys are not retried; a failed warm-up
// only logs a warning.
func SurveyImportWorkflow(ctx workflow.Context, input SurveyImportInput) (*SurveyImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting survey import workflow", "wellID", input.WellID, "rows", len(input.Payload.Survey))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeRejected},
		},
	})

	// Step 1: position and store the survey
	var result SurveyImportResult
	if err := workflow.ExecuteActivity(ctx, ProcessImportActivity, input).Get(ctx, &result); err != nil {
		return nil, err
	}

	// Step 2: precompute descriptors (best effort)
	if err := workflow.ExecuteActivity(ctx, WarmGeometryActivity, result.TrajectoryID).Get(ctx, nil); err != nil {
		logger.Warn("geometry warm-up failed, import kept", "trajectoryID", result.TrajectoryID, "error", err)
	} else {
		result.Warmed = true
	}

	logger.Info("Survey imported", "importID", result.ImportID, "trajectoryID", result.TrajectoryID)
	return &result, nil
}

// StartSurveyImport submits a SurveyImportWorkflow on taskQueue under a fresh
// workflow ID.
func StartSurveyImport(ctx context.Context, c client.Client, taskQueue string, input SurveyImportInput) (client.WorkflowRun, error) {
	return c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "survey-import-" + input.WellID + "-" + uuid.NewString(),
		TaskQueue: taskQueue,
	}, SurveyImportWorkflow, input)
}
