package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/ports"
	"github.com/samirrijal/wellpath/internal/pkg/geospatial"
	"github.com/samirrijal/wellpath/internal/pkg/metrics"
	"github.com/samirrijal/wellpath/internal/pkg/telemetry"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// TrajectoryService serves computed trajectories and their render geometry.
type TrajectoryService struct {
	wells         ports.WellRepository
	trajectories  ports.TrajectoryRepository
	cache         ports.CacheService
	compositor    wellpath.Compositor
	descriptorTTL int
}

// NewTrajectoryService creates a new TrajectoryService. cache may be nil.
func NewTrajectoryService(
	wells ports.WellRepository,
	trajectories ports.TrajectoryRepository,
	cache ports.CacheService,
	compositor wellpath.Compositor,
) *TrajectoryService {
	return &TrajectoryService{
		wells:         wells,
		trajectories:  trajectories,
		cache:         cache,
		compositor:    compositor,
		descriptorTTL: 600,
	}
}

// WithDescriptorTTL overrides how long composed geometry stays cached.
func (s *TrajectoryService) WithDescriptorTTL(seconds int) *TrajectoryService {
	if seconds > 0 {
		s.descriptorTTL = seconds
	}
	return s
}

// Composed sets are cached per trajectory only. Stations and geometry never
// change after an import, so an entry goes stale only when its trajectory is
// deleted; which trajectory is active is always read from the repository.
func trajectoryGeometryKey(id string) string { return "geometry:trajectory:" + id }

// Get returns a single trajectory.
func (s *TrajectoryService) Get(ctx context.Context, id string) (*domain.Trajectory, error) {
	return s.trajectories.GetByID(ctx, id)
}

// ListByWell returns every trajectory of a well, newest first.
func (s *TrajectoryService) ListByWell(ctx context.Context, wellID string) ([]domain.Trajectory, error) {
	if _, err := s.wells.GetByID(ctx, wellID); err != nil {
		return nil, err
	}
	return s.trajectories.ListByWell(ctx, wellID)
}

// Active returns the active trajectory of a well.
func (s *TrajectoryService) Active(ctx context.Context, wellID string) (*domain.Trajectory, error) {
	return s.trajectories.ActiveByWell(ctx, wellID)
}

// Stations returns the positioned stations of a trajectory in depth order.
func (s *TrajectoryService) Stations(ctx context.Context, id string) ([]domain.TrajectoryStation, error) {
	if _, err := s.trajectories.GetByID(ctx, id); err != nil {
		return nil, err
	}
	stations, err := s.trajectories.Stations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	out := make([]domain.TrajectoryStation, len(stations))
	for i, st := range stations {
		out[i] = domain.TrajectoryStation{TrajectoryID: id, Station: st}
	}
	return out, nil
}

// Geometry returns the stored mechanical records of a trajectory.
func (s *TrajectoryService) Geometry(ctx context.Context, id string) ([]domain.BoreholeGeometry, error) {
	if _, err := s.trajectories.GetByID(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.trajectories.Geometry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load geometry: %w", err)
	}
	out := make([]domain.BoreholeGeometry, len(records))
	for i, r := range records {
		out[i] = domain.BoreholeGeometry{TrajectoryID: id, GeometryRecord: r}
	}
	return out, nil
}

// Activate makes the trajectory the active one of its well.
func (s *TrajectoryService) Activate(ctx context.Context, id string) (*domain.Trajectory, error) {
	traj, err := s.trajectories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.trajectories.SetActive(ctx, traj.WellID, traj.ID); err != nil {
		return nil, fmt.Errorf("activate trajectory: %w", err)
	}
	traj.IsActive = true
	return traj, nil
}

// Delete removes a trajectory with its stations and geometry.
func (s *TrajectoryService) Delete(ctx context.Context, id string) error {
	traj, err := s.trajectories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.trajectories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete trajectory: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, trajectoryGeometryKey(traj.ID))
	}
	return nil
}

// Summary reports the extent of a trajectory and, when the well has a surface
// location, where its bottom hole lies on the map.
func (s *TrajectoryService) Summary(ctx context.Context, id string) (*domain.TrajectorySummary, error) {
	traj, err := s.trajectories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stations, err := s.trajectories.Stations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}

	sum := &domain.TrajectorySummary{TrajectoryID: id, Summary: wellpath.Summarize(stations)}
	if len(stations) == 0 {
		return sum, nil
	}
	well, err := s.wells.GetByID(ctx, traj.WellID)
	if err != nil {
		return nil, fmt.Errorf("get well: %w", err)
	}
	if well.Surface != nil {
		lat, lon := geospatial.Offset(well.Surface.Lat, well.Surface.Lon, sum.Bottom.North, sum.Bottom.East)
		sum.BottomHole = &domain.GeoPoint{Lat: lat, Lon: lon}
	}
	return sum, nil
}

// Descriptors composes the renderable tubes of a trajectory.
func (s *TrajectoryService) Descriptors(ctx context.Context, id string) (*domain.GeometrySet, error) {
	traj, err := s.trajectories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cachedCompose(ctx, trajectoryGeometryKey(id), traj)
}

// WellDescriptors composes the tubes of the well's active trajectory.
func (s *TrajectoryService) WellDescriptors(ctx context.Context, wellID string) (*domain.GeometrySet, error) {
	traj, err := s.trajectories.ActiveByWell(ctx, wellID)
	if err != nil {
		return nil, err
	}
	return s.cachedCompose(ctx, trajectoryGeometryKey(traj.ID), traj)
}

// Warm composes and caches the geometry of a trajectory ahead of the first
// request. Well lookups share the entry once the trajectory is active.
func (s *TrajectoryService) Warm(ctx context.Context, id string) error {
	traj, err := s.trajectories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	set, err := s.compose(ctx, traj)
	if err != nil {
		return err
	}
	s.store(ctx, trajectoryGeometryKey(traj.ID), set)
	return nil
}

func (s *TrajectoryService) cachedCompose(ctx context.Context, key string, traj *domain.Trajectory) (*domain.GeometrySet, error) {
	if set, ok := s.cached(ctx, key); ok {
		return set, nil
	}
	set, err := s.compose(ctx, traj)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, set)
	return set, nil
}

func (s *TrajectoryService) cached(ctx context.Context, key string) (*domain.GeometrySet, bool) {
	if s.cache == nil {
		return nil, false
	}
	if data, err := s.cache.Get(ctx, key); err == nil {
		var set domain.GeometrySet
		if err := json.Unmarshal(data, &set); err == nil {
			metrics.CacheHits.WithLabelValues("geometry").Inc()
			return &set, true
		}
	}
	metrics.CacheMisses.WithLabelValues("geometry").Inc()
	return nil, false
}

func (s *TrajectoryService) store(ctx context.Context, key string, set *domain.GeometrySet) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(set); err == nil {
		_ = s.cache.Set(ctx, key, data, s.descriptorTTL)
	}
}

func (s *TrajectoryService) compose(ctx context.Context, traj *domain.Trajectory) (*domain.GeometrySet, error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanGeometryCompose,
		trace.WithAttributes(attribute.String("trajectory.id", traj.ID)))
	defer span.End()

	stations, err := s.trajectories.Stations(ctx, traj.ID)
	if err != nil {
		return nil, telemetry.Fail(span, fmt.Errorf("load stations: %w", err))
	}
	records, err := s.trajectories.Geometry(ctx, traj.ID)
	if err != nil {
		return nil, telemetry.Fail(span, fmt.Errorf("load geometry: %w", err))
	}

	start := time.Now()
	comp := s.compositor.Compose(stations, records)
	metrics.ComposeDuration.Observe(time.Since(start).Seconds())

	kinds := make([]string, len(comp.Warnings))
	for i, w := range comp.Warnings {
		kinds[i] = string(w.Kind)
	}
	metrics.ObserveWarnings(kinds...)
	if len(comp.Warnings) > 0 {
		slog.DebugContext(ctx, "geometry composed with warnings",
			"trajectory_id", traj.ID, "warnings", len(comp.Warnings))
	}
	span.SetAttributes(
		attribute.Int("geometry.descriptors", len(comp.Descriptors)),
		attribute.Int("geometry.warnings", len(comp.Warnings)),
	)

	return &domain.GeometrySet{
		TrajectoryID: traj.ID,
		Name:         traj.Name,
		Descriptors:  comp.Descriptors,
		Warnings:     comp.Warnings,
	}, nil
}

// Interpolate returns the centerline between two depths of a trajectory.
func (s *TrajectoryService) Interpolate(ctx context.Context, id string, start, end float64) (wellpath.Segment, error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanSegment, trace.WithAttributes(
		attribute.String("trajectory.id", id),
		attribute.Float64("segment.start", start),
		attribute.Float64("segment.end", end),
	))
	defer span.End()

	if start > end {
		return wellpath.Segment{}, telemetry.Fail(span,
			fmt.Errorf("%w: start %v is below end %v", domain.ErrValidation, start, end))
	}
	if _, err := s.trajectories.GetByID(ctx, id); err != nil {
		return wellpath.Segment{}, telemetry.Fail(span, err)
	}
	stations, err := s.trajectories.Stations(ctx, id)
	if err != nil {
		return wellpath.Segment{}, telemetry.Fail(span, fmt.Errorf("load stations: %w", err))
	}
	return wellpath.Interpolate(stations, start, end), nil
}
