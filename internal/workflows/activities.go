package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// ErrTypeRejected marks activity errors that retrying cannot fix.
const ErrTypeRejected = "SurveyRejected"

// SurveyImportActivities holds the activity implementations for the survey
// import workflow.
type SurveyImportActivities struct {
	Imports      *usecases.ImportService
	Trajectories *usecases.TrajectoryService
}

// ProcessImport runs the synchronous import keyed by the workflow ID, so a
// retried attempt resumes the import of the previous one. A rejected survey
// leaves its ERROR import behind and fails without retry; the import ID is
// attached as error details.
func (a *SurveyImportActivities) ProcessImport(ctx context.Context, input SurveyImportInput) (*SurveyImportResult, error) {
	res, err := a.Imports.ProcessOnce(ctx, requestKey(ctx), input.WellID, &input.Payload)
	if err != nil {
		if rejected(err) {
			var importID string
			if res != nil && res.Import != nil {
				importID = res.Import.ID
			}
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeRejected, err, importID)
		}
		return nil, err
	}

	activity.GetLogger(ctx).Info("survey processed", "importID", res.Import.ID, "stations", res.Stations)
	return &SurveyImportResult{
		ImportID:     res.Import.ID,
		TrajectoryID: res.Trajectory.ID,
		Stations:     res.Stations,
		Geometry:     res.Geometry,
	}, nil
}

// WarmGeometry composes and caches the descriptors of a trajectory.
func (a *SurveyImportActivities) WarmGeometry(ctx context.Context, trajectoryID string) error {
	return a.Trajectories.Warm(ctx, trajectoryID)
}

// requestKey identifies the import across activity attempts of one run.
func requestKey(ctx context.Context) string {
	return activity.GetInfo(ctx).WorkflowExecution.ID
}

func rejected(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, wellpath.ErrInvalidInput)
}
