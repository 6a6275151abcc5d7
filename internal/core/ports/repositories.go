package ports

import (
	"context"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// WellRepository persists wells.
type WellRepository interface {
	Create(ctx context.Context, well *domain.Well) error
	GetByID(ctx context.Context, id string) (*domain.Well, error)
	List(ctx context.Context) ([]domain.Well, error)
	FindNearby(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.Well, error)
}

// ImportRepository persists survey import audit records.
type ImportRepository interface {
	Create(ctx context.Context, imp *domain.SurveyImport) error
	UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, log string) error
	GetByID(ctx context.Context, id string) (*domain.SurveyImport, error)
	GetByRequestKey(ctx context.Context, wellID, key string) (*domain.SurveyImport, error)
	RecentByWell(ctx context.Context, wellID string, limit int) ([]domain.SurveyImport, error)
}

// TrajectoryRepository persists trajectories with their stations and geometry.
type TrajectoryRepository interface {
	// Create stores the trajectory, its stations and its geometry atomically
	// and fills in traj.ID and traj.CreatedAt. When traj.IsActive is set the
	// well's other trajectories are deactivated in the same transaction.
	Create(ctx context.Context, traj *domain.Trajectory, stations []wellpath.Station, geometry []wellpath.GeometryRecord) error
	GetByID(ctx context.Context, id string) (*domain.Trajectory, error)
	// BySourceImport returns the trajectory stored by an import.
	BySourceImport(ctx context.Context, importID string) (*domain.Trajectory, error)
	ListByWell(ctx context.Context, wellID string) ([]domain.Trajectory, error)
	ActiveByWell(ctx context.Context, wellID string) (*domain.Trajectory, error)
	Stations(ctx context.Context, trajectoryID string) ([]wellpath.Station, error)
	Geometry(ctx context.Context, trajectoryID string) ([]wellpath.GeometryRecord, error)
	// SetActive makes trajectoryID the only active trajectory of its well.
	SetActive(ctx context.Context, wellID, trajectoryID string) error
	Delete(ctx context.Context, id string) error
}
