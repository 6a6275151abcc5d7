package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// --- Mock WellRepository ---

type mockWellRepo struct {
	createFn     func(ctx context.Context, well *domain.Well) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Well, error)
	listFn       func(ctx context.Context) ([]domain.Well, error)
	findNearbyFn func(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.Well, error)
}

func (m *mockWellRepo) Create(ctx context.Context, well *domain.Well) error {
	if m.createFn != nil {
		return m.createFn(ctx, well)
	}
	return nil
}

func (m *mockWellRepo) GetByID(ctx context.Context, id string) (*domain.Well, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Well{ID: id, Name: "Well " + id}, nil
}

func (m *mockWellRepo) List(ctx context.Context) ([]domain.Well, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockWellRepo) FindNearby(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.Well, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, bounds, limit)
	}
	return nil, nil
}

// --- Mock ImportRepository ---

var importCreatedAt = time.Date(2024, 3, 7, 14, 5, 0, 0, time.UTC)

type statusUpdate struct {
	id     string
	status domain.ImportStatus
	log    string
}

type mockImportRepo struct {
	created []*domain.SurveyImport
	updates []statusUpdate

	getByIDFn func(ctx context.Context, id string) (*domain.SurveyImport, error)
	recentFn  func(ctx context.Context, wellID string, limit int) ([]domain.SurveyImport, error)
	updateFn  func(status domain.ImportStatus) error
}

func (m *mockImportRepo) Create(ctx context.Context, imp *domain.SurveyImport) error {
	imp.ID = fmt.Sprintf("imp-%d", len(m.created)+1)
	imp.CreatedAt = importCreatedAt
	cp := *imp
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockImportRepo) UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, log string) error {
	if m.updateFn != nil {
		if err := m.updateFn(status); err != nil {
			return err
		}
	}
	m.updates = append(m.updates, statusUpdate{id: id, status: status, log: log})
	for _, imp := range m.created {
		if imp.ID == id {
			imp.Status, imp.ProcessingLog = status, log
		}
	}
	return nil
}

func (m *mockImportRepo) GetByRequestKey(ctx context.Context, wellID, key string) (*domain.SurveyImport, error) {
	for _, imp := range m.created {
		if imp.WellID == wellID && imp.RequestKey == key {
			cp := *imp
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockImportRepo) GetByID(ctx context.Context, id string) (*domain.SurveyImport, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockImportRepo) RecentByWell(ctx context.Context, wellID string, limit int) ([]domain.SurveyImport, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, wellID, limit)
	}
	return nil, nil
}

// --- Mock TrajectoryRepository ---

// memTrajectoryRepo keeps trajectories in memory.
type memTrajectoryRepo struct {
	trajectories map[string]*domain.Trajectory
	stations     map[string][]wellpath.Station
	geometry     map[string][]wellpath.GeometryRecord
	stationLoads int
	createErr    error
}

func newMemTrajectoryRepo() *memTrajectoryRepo {
	return &memTrajectoryRepo{
		trajectories: map[string]*domain.Trajectory{},
		stations:     map[string][]wellpath.Station{},
		geometry:     map[string][]wellpath.GeometryRecord{},
	}
}

func (m *memTrajectoryRepo) Create(ctx context.Context, traj *domain.Trajectory, stations []wellpath.Station, geometry []wellpath.GeometryRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if traj.ID == "" {
		traj.ID = "traj-" + string(rune('a'+len(m.trajectories)))
	}
	if traj.IsActive {
		for _, t := range m.trajectories {
			if t.WellID == traj.WellID {
				t.IsActive = false
			}
		}
	}
	cp := *traj
	m.trajectories[traj.ID] = &cp
	m.stations[traj.ID] = stations
	m.geometry[traj.ID] = geometry
	return nil
}

func (m *memTrajectoryRepo) GetByID(ctx context.Context, id string) (*domain.Trajectory, error) {
	t, ok := m.trajectories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTrajectoryRepo) BySourceImport(ctx context.Context, importID string) (*domain.Trajectory, error) {
	for _, t := range m.trajectories {
		if t.SourceImportID != nil && *t.SourceImportID == importID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTrajectoryRepo) ListByWell(ctx context.Context, wellID string) ([]domain.Trajectory, error) {
	var out []domain.Trajectory
	for _, t := range m.trajectories {
		if t.WellID == wellID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTrajectoryRepo) ActiveByWell(ctx context.Context, wellID string) (*domain.Trajectory, error) {
	for _, t := range m.trajectories {
		if t.WellID == wellID && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTrajectoryRepo) Stations(ctx context.Context, id string) ([]wellpath.Station, error) {
	m.stationLoads++
	return m.stations[id], nil
}

func (m *memTrajectoryRepo) Geometry(ctx context.Context, id string) ([]wellpath.GeometryRecord, error) {
	return m.geometry[id], nil
}

func (m *memTrajectoryRepo) SetActive(ctx context.Context, wellID, id string) error {
	if _, ok := m.trajectories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, t := range m.trajectories {
		if t.WellID == wellID {
			t.IsActive = t.ID == id
		}
	}
	return nil
}

func (m *memTrajectoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.trajectories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trajectories, id)
	delete(m.stations, id)
	delete(m.geometry, id)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	computed []*domain.TrajectoryComputed
	failed   []*domain.ImportFailed
}

func (m *mockPublisher) PublishTrajectoryComputed(ctx context.Context, event *domain.TrajectoryComputed) error {
	m.computed = append(m.computed, event)
	return nil
}

func (m *mockPublisher) PublishImportFailed(ctx context.Context, event *domain.ImportFailed) error {
	m.failed = append(m.failed, event)
	return nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func ptr(v float64) *float64 { return &v }
