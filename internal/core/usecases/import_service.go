package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/ports"
	"github.com/samirrijal/wellpath/internal/pkg/metrics"
	"github.com/samirrijal/wellpath/internal/pkg/telemetry"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// recentImports is how many imports RecentByWell returns.
const recentImports = 5

// ImportService turns uploaded survey payloads into stored trajectories.
type ImportService struct {
	wells        ports.WellRepository
	imports      ports.ImportRepository
	trajectories ports.TrajectoryRepository
	publisher    ports.EventPublisher
	sanitizer    wellpath.Sanitizer
	now          func() time.Time
}

// NewImportService creates a new ImportService. publisher may be nil.
func NewImportService(
	wells ports.WellRepository,
	imports ports.ImportRepository,
	trajectories ports.TrajectoryRepository,
	publisher ports.EventPublisher,
	sanitizer wellpath.Sanitizer,
) *ImportService {
	return &ImportService{
		wells:        wells,
		imports:      imports,
		trajectories: trajectories,
		publisher:    publisher,
		sanitizer:    sanitizer,
		now:          time.Now,
	}
}

// Process records an import for the well, computes the trajectory and stores
// it with its geometry. The new trajectory becomes the active one.
//
// A rejected payload still leaves an ERROR import behind; the returned result
// carries it alongside the error.
func (s *ImportService) Process(ctx context.Context, wellID string, payload *domain.SurveyPayload) (*domain.ImportResult, error) {
	return s.ProcessOnce(ctx, "", wellID, payload)
}

// ProcessOnce is Process for retried requests. The first call records the
// import under requestKey; later calls with the same key reuse that import,
// pick up a trajectory an earlier attempt already stored and return a
// finished import unchanged. An empty key always records a new import.
func (s *ImportService) ProcessOnce(ctx context.Context, requestKey, wellID string, payload *domain.SurveyPayload) (*domain.ImportResult, error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanImportProcess,
		trace.WithAttributes(attribute.String("well.id", wellID)))
	defer span.End()

	if payload == nil {
		return nil, telemetry.Fail(span, fmt.Errorf("%w: empty payload", domain.ErrValidation))
	}
	well, err := s.wells.GetByID(ctx, wellID)
	if err != nil {
		return nil, telemetry.Fail(span, fmt.Errorf("get well: %w", err))
	}

	imp, resumed, err := s.importFor(ctx, well.ID, requestKey, payload)
	if err != nil {
		return nil, telemetry.Fail(span, err)
	}
	span.SetAttributes(attribute.String("import.id", imp.ID), attribute.Bool("import.resumed", resumed))

	var (
		result *domain.ImportResult
		log    []string
	)
	if resumed {
		if result, log, err = s.stored(ctx, imp); err != nil {
			return nil, telemetry.Fail(span, err)
		}
		if imp.Status == domain.ImportProcessed {
			if result == nil {
				return nil, telemetry.Fail(span, fmt.Errorf("%w: import %s already processed and its trajectory is gone", domain.ErrConflict, imp.ID))
			}
			result.Import = imp
			return result, nil
		}
	}
	if result == nil {
		result, log, err = s.run(ctx, imp, payload)
		if err != nil {
			s.fail(ctx, imp, err)
			return &domain.ImportResult{Import: imp}, telemetry.Fail(span, err)
		}
	}

	imp.Status = domain.ImportProcessed
	imp.ProcessingLog = strings.Join(log, "\n")
	if err := s.imports.UpdateStatus(ctx, imp.ID, imp.Status, imp.ProcessingLog); err != nil {
		return nil, telemetry.Fail(span, fmt.Errorf("mark import processed: %w", err))
	}
	result.Import = imp

	metrics.SurveysImported.WithLabelValues(strings.ToLower(string(imp.Status))).Inc()
	metrics.StationsComputed.Add(float64(result.Stations))

	if s.publisher != nil {
		_ = s.publisher.PublishTrajectoryComputed(ctx, &domain.TrajectoryComputed{
			WellID:       imp.WellID,
			TrajectoryID: result.Trajectory.ID,
			ImportID:     imp.ID,
			Stations:     result.Stations,
			Geometry:     result.Geometry,
			Time:         s.now(),
		})
	}

	slog.InfoContext(ctx, "survey imported",
		"well_id", imp.WellID,
		"import_id", imp.ID,
		"trajectory_id", result.Trajectory.ID,
		"stations", result.Stations,
		"geometry", result.Geometry,
		"resumed", resumed,
	)
	return result, nil
}

// importFor returns the import recorded under requestKey, or records a new
// PENDING one.
func (s *ImportService) importFor(ctx context.Context, wellID, requestKey string, p *domain.SurveyPayload) (*domain.SurveyImport, bool, error) {
	if requestKey != "" {
		imp, err := s.imports.GetByRequestKey(ctx, wellID, requestKey)
		if err == nil {
			return imp, true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("find import: %w", err)
		}
	}

	imp := &domain.SurveyImport{
		WellID:     wellID,
		Filename:   p.Filename,
		UploadedBy: p.UploadedBy,
		Status:     domain.ImportPending,
		RequestKey: requestKey,
	}
	if err := s.imports.Create(ctx, imp); err != nil {
		return nil, false, fmt.Errorf("create import: %w", err)
	}
	return imp, false, nil
}

// stored returns the trajectory an earlier attempt of imp committed, or nil.
func (s *ImportService) stored(ctx context.Context, imp *domain.SurveyImport) (*domain.ImportResult, []string, error) {
	traj, err := s.trajectories.BySourceImport(ctx, imp.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find stored trajectory: %w", err)
	}
	stations, err := s.trajectories.Stations(ctx, traj.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load stations: %w", err)
	}
	geometry, err := s.trajectories.Geometry(ctx, traj.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load geometry: %w", err)
	}

	log := []string{"trajectory created.", fmt.Sprintf("processed %d survey stations.", len(stations))}
	if len(geometry) > 0 {
		log = append(log, fmt.Sprintf("loaded %d mechanical elements.", len(geometry)))
	}
	return &domain.ImportResult{
		Trajectory: traj,
		Stations:   len(stations),
		Geometry:   len(geometry),
	}, log, nil
}

func (s *ImportService) run(ctx context.Context, imp *domain.SurveyImport, p *domain.SurveyPayload) (*domain.ImportResult, []string, error) {
	var log []string

	traj := &domain.Trajectory{
		WellID:              imp.WellID,
		SourceImportID:      &imp.ID,
		Name:                strings.TrimSpace(p.TrajectoryName),
		Type:                p.TrajectoryType,
		MagneticDeclination: p.MagneticDeclination,
		GridConvergence:     p.GridConvergence,
		IsActive:            true,
	}
	if traj.Name == "" {
		created := imp.CreatedAt
		if created.IsZero() {
			created = s.now()
		}
		traj.Name = "Imported " + created.Format("02/01 15:04")
	}
	if traj.Type == "" {
		traj.Type = domain.TrajectoryReal
	}
	if !traj.Type.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown trajectory type %q", domain.ErrValidation, traj.Type)
	}

	measurements, err := surveyMeasurements(p.Survey)
	if err != nil {
		return nil, nil, err
	}

	_, span := telemetry.Start(ctx, telemetry.SpanImportAccumulate,
		trace.WithAttributes(attribute.Int("survey.rows", len(measurements))))
	stations, err := wellpath.Accumulator{Reference: traj.Reference()}.Accumulate(measurements)
	span.End()
	if err != nil {
		return nil, nil, err
	}

	geometry, skipped := s.mechanical(p.Mechanical)

	// Storing and activating is one transaction; a failure leaves nothing behind.
	if err := s.trajectories.Create(ctx, traj, stations, geometry); err != nil {
		return nil, nil, fmt.Errorf("store trajectory: %w", err)
	}
	log = append(log, "trajectory created.")
	log = append(log, fmt.Sprintf("processed %d survey stations.", len(stations)))
	if len(p.Mechanical) > 0 {
		log = append(log, skipped...)
		log = append(log, fmt.Sprintf("loaded %d mechanical elements.", len(geometry)))
	}

	return &domain.ImportResult{
		Trajectory: traj,
		Stations:   len(stations),
		Geometry:   len(geometry),
	}, log, nil
}

func (s *ImportService) fail(ctx context.Context, imp *domain.SurveyImport, cause error) {
	imp.Status = domain.ImportError
	imp.ProcessingLog = "critical error: " + cause.Error()
	if err := s.imports.UpdateStatus(ctx, imp.ID, imp.Status, imp.ProcessingLog); err != nil {
		slog.ErrorContext(ctx, "mark import failed", "import_id", imp.ID, "error", err)
	}

	metrics.SurveysImported.WithLabelValues(strings.ToLower(string(imp.Status))).Inc()
	slog.WarnContext(ctx, "survey import rejected", "well_id", imp.WellID, "import_id", imp.ID, "error", cause)

	if s.publisher != nil {
		_ = s.publisher.PublishImportFailed(ctx, &domain.ImportFailed{
			WellID:   imp.WellID,
			ImportID: imp.ID,
			Error:    cause.Error(),
			Time:     s.now(),
		})
	}
}

// mechanical sanitizes the mechanical rows. Rows missing a label or a depth
// are skipped and reported in the returned log lines.
func (s *ImportService) mechanical(rows []domain.MechanicalRow) ([]wellpath.GeometryRecord, []string) {
	var (
		records []wellpath.GeometryRecord
		skipped []string
	)
	for i, row := range rows {
		label := strings.TrimSpace(row.Item)
		if label == "" || row.TopMD == nil || row.BottomMD == nil {
			skipped = append(skipped, fmt.Sprintf("mechanical row %d skipped: missing Item, Top_MD or Bottom_MD.", i+1))
			continue
		}
		diameter, color := s.sanitizer.Sanitize(row.Diameter, row.Color)
		records = append(records, wellpath.GeometryRecord{
			Label:      label,
			StartDepth: *row.TopMD,
			EndDepth:   *row.BottomMD,
			Diameter:   diameter,
			Color:      color,
		})
	}
	return records, skipped
}

// surveyMeasurements checks the survey sheet contract and converts it.
func surveyMeasurements(rows []domain.SurveyRow) ([]wellpath.Measurement, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: survey sheet has no rows", domain.ErrValidation)
	}
	out := make([]wellpath.Measurement, len(rows))
	for i, r := range rows {
		var missing []string
		if r.MD == nil {
			missing = append(missing, "MD")
		}
		if r.Inc == nil {
			missing = append(missing, "Inc")
		}
		if r.Azi == nil {
			missing = append(missing, "Azi")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: survey row %d missing %s", domain.ErrValidation, i+1, strings.Join(missing, ", "))
		}
		out[i] = wellpath.Measurement{Depth: *r.MD, Inclination: *r.Inc, Azimuth: *r.Azi}
	}
	return out, nil
}

// Get returns a single import.
func (s *ImportService) Get(ctx context.Context, id string) (*domain.SurveyImport, error) {
	return s.imports.GetByID(ctx, id)
}

// RecentByWell returns the latest imports of a well, newest first.
func (s *ImportService) RecentByWell(ctx context.Context, wellID string) ([]domain.SurveyImport, error) {
	return s.imports.RecentByWell(ctx, wellID, recentImports)
}
