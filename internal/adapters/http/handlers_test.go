package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/wellpath/internal/adapters/http"
	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// ---- Mock repositories ----

type mockWellRepo struct {
	createFn     func(ctx context.Context, w *domain.Well) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Well, error)
	listFn       func(ctx context.Context) ([]domain.Well, error)
	findNearbyFn func(ctx context.Context, b domain.Bounds, limit int) ([]domain.Well, error)
}

func (m *mockWellRepo) Create(ctx context.Context, w *domain.Well) error {
	if m.createFn != nil {
		return m.createFn(ctx, w)
	}
	w.ID = "well-new"
	return nil
}
func (m *mockWellRepo) GetByID(ctx context.Context, id string) (*domain.Well, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	if id == "w1" {
		return &domain.Well{ID: "w1", Name: "RJS-7", Surface: &domain.GeoPoint{Lat: -12.5, Lon: -38.2}}, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockWellRepo) List(ctx context.Context) ([]domain.Well, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockWellRepo) FindNearby(ctx context.Context, b domain.Bounds, limit int) ([]domain.Well, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, b, limit)
	}
	return nil, nil
}

type memImportRepo struct {
	mu      sync.Mutex
	imports map[string]*domain.SurveyImport
}

func newMemImportRepo() *memImportRepo {
	return &memImportRepo{imports: map[string]*domain.SurveyImport{}}
}

func (m *memImportRepo) Create(ctx context.Context, imp *domain.SurveyImport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	imp.ID = fmt.Sprintf("imp-%d", len(m.imports)+1)
	imp.CreatedAt = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	cp := *imp
	m.imports[imp.ID] = &cp
	return nil
}
func (m *memImportRepo) UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, log string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	imp, ok := m.imports[id]
	if !ok {
		return domain.ErrNotFound
	}
	imp.Status, imp.ProcessingLog = status, log
	return nil
}
func (m *memImportRepo) GetByID(ctx context.Context, id string) (*domain.SurveyImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	imp, ok := m.imports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *imp
	return &cp, nil
}
func (m *memImportRepo) GetByRequestKey(ctx context.Context, wellID, key string) (*domain.SurveyImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, imp := range m.imports {
		if imp.WellID == wellID && imp.RequestKey == key {
			cp := *imp
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memImportRepo) RecentByWell(ctx context.Context, wellID string, limit int) ([]domain.SurveyImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SurveyImport
	for _, imp := range m.imports {
		if imp.WellID == wellID {
			out = append(out, *imp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTrajectoryRepo struct {
	mu       sync.Mutex
	seq      int
	trajs    map[string]*domain.Trajectory
	stations map[string][]wellpath.Station
	geometry map[string][]wellpath.GeometryRecord
}

func newMemTrajectoryRepo() *memTrajectoryRepo {
	return &memTrajectoryRepo{
		trajs:    map[string]*domain.Trajectory{},
		stations: map[string][]wellpath.Station{},
		geometry: map[string][]wellpath.GeometryRecord{},
	}
}

func (m *memTrajectoryRepo) Create(ctx context.Context, t *domain.Trajectory, st []wellpath.Station, g []wellpath.GeometryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.trajs {
		if other.WellID == t.WellID && other.Name == t.Name {
			return domain.ErrConflict
		}
	}
	if t.IsActive {
		for _, other := range m.trajs {
			if other.WellID == t.WellID {
				other.IsActive = false
			}
		}
	}
	m.seq++
	t.ID = fmt.Sprintf("traj-%d", m.seq)
	t.CreatedAt = time.Date(2024, 5, 2, 9, 30, m.seq, 0, time.UTC)
	cp := *t
	m.trajs[t.ID] = &cp
	m.stations[t.ID] = st
	m.geometry[t.ID] = g
	return nil
}
func (m *memTrajectoryRepo) GetByID(ctx context.Context, id string) (*domain.Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trajs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}
func (m *memTrajectoryRepo) BySourceImport(ctx context.Context, importID string) (*domain.Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trajs {
		if t.SourceImportID != nil && *t.SourceImportID == importID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memTrajectoryRepo) ListByWell(ctx context.Context, wellID string) ([]domain.Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trajectory
	for _, t := range m.trajs {
		if t.WellID == wellID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
func (m *memTrajectoryRepo) ActiveByWell(ctx context.Context, wellID string) (*domain.Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trajs {
		if t.WellID == wellID && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memTrajectoryRepo) Stations(ctx context.Context, id string) ([]wellpath.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stations[id], nil
}
func (m *memTrajectoryRepo) Geometry(ctx context.Context, id string) ([]wellpath.GeometryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.geometry[id], nil
}
func (m *memTrajectoryRepo) SetActive(ctx context.Context, wellID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trajs[id]; !ok {
		return domain.ErrNotFound
	}
	for _, t := range m.trajs {
		if t.WellID == wellID {
			t.IsActive = t.ID == id
		}
	}
	return nil
}
func (m *memTrajectoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trajs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trajs, id)
	delete(m.stations, id)
	delete(m.geometry, id)
	return nil
}

// ---- Test helpers ----

type fixture struct {
	wells   *mockWellRepo
	imports *memImportRepo
	trajs   *memTrajectoryRepo
	deps    *handler.Dependencies
}

func newFixture() *fixture {
	f := &fixture{
		wells:   &mockWellRepo{},
		imports: newMemImportRepo(),
		trajs:   newMemTrajectoryRepo(),
	}
	f.deps = &handler.Dependencies{
		Wells:        usecases.NewWellService(f.wells, nil),
		Imports:      usecases.NewImportService(f.wells, f.imports, f.trajs, nil, wellpath.DefaultSanitizer()),
		Trajectories: usecases.NewTrajectoryService(f.wells, f.trajs, nil, wellpath.DefaultCompositor()),
	}
	return f
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *httptestResponse {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	return &httptestResponse{Status: resp.StatusCode, Header: resp.Header, Body: readBody(t, resp.Body)}
}

type httptestResponse struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func (r *httptestResponse) get(key string) string {
	if v := r.Header[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

const surveyBody = `{
	"filename": "rjs7_survey.json",
	"uploaded_by": "geo@field",
	"survey": [
		{"MD": 0, "Inc": 0, "Azi": 0},
		{"MD": 500, "Inc": 10, "Azi": 45},
		{"MD": 1000, "Inc": 20, "Azi": 45}
	],
	"mechanical": [
		{"Item": "Casing", "Top_MD": 0, "Bottom_MD": 600, "Diameter": "9,625", "Color": "#444444"},
		{"Item": "Open Hole", "Top_MD": 600, "Bottom_MD": 1000, "Diameter": 8500}
	]
}`

// importSurvey posts surveyBody to w1 and returns the new trajectory ID.
func importSurvey(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", surveyBody)
	if resp.Status != 201 {
		t.Fatalf("import: expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var result domain.ImportResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	return result.Trajectory.ID
}

// ---- Well handler tests ----

func TestListWells_Pagination(t *testing.T) {
	f := newFixture()
	f.wells.listFn = func(ctx context.Context) ([]domain.Well, error) {
		wells := make([]domain.Well, 5)
		for i := range wells {
			wells[i] = domain.Well{ID: fmt.Sprintf("w%d", i), Name: fmt.Sprintf("Well %d", i)}
		}
		return wells, nil
	}
	app := setupApp(f.deps)

	resp := doJSON(t, app, "GET", "/v1/wells?offset=2&limit=2", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	var result struct {
		Data       []domain.Well `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 || result.Pagination.Offset != 2 {
		t.Errorf("unexpected pagination: %+v", result.Pagination)
	}
	if len(result.Data) != 2 || result.Data[0].ID != "w2" {
		t.Errorf("unexpected page: %+v", result.Data)
	}
	if !strings.Contains(resp.get("Link"), `rel="next"`) {
		t.Errorf("expected next link, got %q", resp.get("Link"))
	}
}

func TestCreateWell_Success(t *testing.T) {
	f := newFixture()
	app := setupApp(f.deps)

	resp := doJSON(t, app, "POST", "/v1/wells", `{"name":"  RJS-9 ","surface":{"lat":-12.4,"lon":-38.1}}`)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	var well domain.Well
	_ = json.Unmarshal(resp.Body, &well)
	if well.ID != "well-new" || well.Name != "RJS-9" || !well.IsActive {
		t.Errorf("unexpected well: %+v", well)
	}
}

func TestCreateWell_Validation(t *testing.T) {
	app := setupApp(newFixture().deps)

	for _, body := range []string{`{"name":"   "}`, `{"name":"X","surface":{"lat":91,"lon":0}}`} {
		resp := doJSON(t, app, "POST", "/v1/wells", body)
		if resp.Status != 400 {
			t.Errorf("%s: expected 400, got %d", body, resp.Status)
		}
	}
}

func TestCreateWell_Conflict(t *testing.T) {
	f := newFixture()
	f.wells.createFn = func(ctx context.Context, w *domain.Well) error { return domain.ErrConflict }
	app := setupApp(f.deps)

	resp := doJSON(t, app, "POST", "/v1/wells", `{"name":"RJS-7"}`)
	if resp.Status != 409 {
		t.Fatalf("expected 409, got %d", resp.Status)
	}
}

func TestNearbyWells_Success(t *testing.T) {
	f := newFixture()
	f.wells.findNearbyFn = func(ctx context.Context, b domain.Bounds, limit int) ([]domain.Well, error) {
		return []domain.Well{
			{ID: "far", Surface: &domain.GeoPoint{Lat: -12.53, Lon: -38.2}},
			{ID: "near", Surface: &domain.GeoPoint{Lat: -12.5, Lon: -38.2}},
			{ID: "nowhere"},
		}, nil
	}
	app := setupApp(f.deps)

	resp := doJSON(t, app, "GET", "/v1/wells/nearby?lat=-12.5&lon=-38.2&radius=5000", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var wells []domain.Well
	_ = json.Unmarshal(resp.Body, &wells)
	if len(wells) != 2 || wells[0].ID != "near" || wells[1].ID != "far" {
		t.Fatalf("expected [near far], got %+v", wells)
	}
	if wells[0].Distance == nil || *wells[0].Distance != 0 {
		t.Errorf("expected zero distance for near well, got %v", wells[0].Distance)
	}
}

func TestNearbyWells_MissingParams(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/wells/nearby", "")
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}

	var apiErr handler.APIError
	_ = json.Unmarshal(resp.Body, &apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestNearbyWells_BadRadius(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/wells/nearby?lat=-12.5&lon=-38.2&radius=500000", "")
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestGetWell_NotFound(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/wells/nope", "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
}

// ---- Import handler tests ----

func TestCreateImport_Success(t *testing.T) {
	f := newFixture()
	app := setupApp(f.deps)

	resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", surveyBody)
	if resp.Status != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Status, resp.Body)
	}
	if loc := resp.get("Location"); loc != "/v1/trajectories/traj-1" {
		t.Errorf("unexpected Location %q", loc)
	}

	var result domain.ImportResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Stations != 3 || result.Geometry != 2 {
		t.Errorf("expected 3 stations and 2 geometry rows, got %d and %d", result.Stations, result.Geometry)
	}
	if result.Import.Status != domain.ImportProcessed {
		t.Errorf("expected PROCESSED, got %s", result.Import.Status)
	}
	if !result.Trajectory.IsActive || result.Trajectory.Name != "Imported 02/05 09:30" {
		t.Errorf("unexpected trajectory: %+v", result.Trajectory)
	}

	stored, _ := f.trajs.Geometry(context.Background(), "traj-1")
	if stored[0].Diameter != 9.625 || stored[1].Diameter != 8.5 || stored[1].Color != wellpath.DefaultColor {
		t.Errorf("diameters not sanitized: %+v", stored)
	}
}

func TestCreateImport_MissingColumn(t *testing.T) {
	f := newFixture()
	app := setupApp(f.deps)

	resp := doJSON(t, app, "POST", "/v1/wells/w1/imports",
		`{"filename":"bad.json","survey":[{"MD":0,"Inc":0},{"MD":100,"Inc":1,"Azi":10}]}`)
	if resp.Status != 422 {
		t.Fatalf("expected 422, got %d: %s", resp.Status, resp.Body)
	}
	if loc := resp.get("Location"); loc != "/v1/imports/imp-1" {
		t.Errorf("unexpected Location %q", loc)
	}

	imp, err := f.imports.GetByID(context.Background(), "imp-1")
	if err != nil {
		t.Fatal(err)
	}
	if imp.Status != domain.ImportError || !strings.HasPrefix(imp.ProcessingLog, "critical error: ") {
		t.Errorf("unexpected import state: %+v", imp)
	}
	if len(f.trajs.trajs) != 0 {
		t.Errorf("expected no trajectory to be stored")
	}
}

func TestCreateImport_UnknownTrajectoryType(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "POST", "/v1/wells/w1/imports",
		`{"trajectory_type":"GUESS","survey":[{"MD":0,"Inc":0,"Azi":0},{"MD":100,"Inc":2,"Azi":10}]}`)
	if resp.Status != 422 {
		t.Fatalf("expected 422, got %d: %s", resp.Status, resp.Body)
	}
}

func TestCreateImport_UnknownWell(t *testing.T) {
	f := newFixture()
	app := setupApp(f.deps)

	resp := doJSON(t, app, "POST", "/v1/wells/nope/imports", surveyBody)
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
	if len(f.imports.imports) != 0 {
		t.Errorf("expected no import record for unknown well")
	}
}

func TestCreateImport_BadBody(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", `{"survey":`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

func TestCreateImport_DuplicateName(t *testing.T) {
	app := setupApp(newFixture().deps)

	body := `{"trajectory_name":"Plan A","survey":[{"MD":0,"Inc":0,"Azi":0},{"MD":100,"Inc":1,"Azi":10}]}`
	if resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", body); resp.Status != 201 {
		t.Fatalf("first import: expected 201, got %d", resp.Status)
	}
	if resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", body); resp.Status != 409 {
		t.Fatalf("second import: expected 409, got %d", resp.Status)
	}
}

func TestWellImports(t *testing.T) {
	app := setupApp(newFixture().deps)
	importSurvey(t, app)

	resp := doJSON(t, app, "GET", "/v1/wells/w1/imports", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var imports []domain.SurveyImport
	_ = json.Unmarshal(resp.Body, &imports)
	if len(imports) != 1 || imports[0].Filename != "rjs7_survey.json" {
		t.Errorf("unexpected imports: %+v", imports)
	}

	resp = doJSON(t, app, "GET", "/v1/imports/imp-1", "")
	var imp domain.SurveyImport
	_ = json.Unmarshal(resp.Body, &imp)
	want := "trajectory created.\nprocessed 3 survey stations.\nloaded 2 mechanical elements."
	if imp.ProcessingLog != want {
		t.Errorf("processing log = %q, want %q", imp.ProcessingLog, want)
	}
}

// ---- Trajectory handler tests ----

func TestWellGeometry_ETag(t *testing.T) {
	app := setupApp(newFixture().deps)
	importSurvey(t, app)

	resp := doJSON(t, app, "GET", "/v1/wells/w1/geometry", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var set domain.GeometrySet
	if err := json.Unmarshal(resp.Body, &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Descriptors) != 2 || set.Descriptors[0].Name != "Casing" {
		t.Fatalf("unexpected descriptors: %+v", set.Descriptors)
	}

	etag := resp.get("Etag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	req := httptest.NewRequest("GET", "/v1/wells/w1/geometry", nil)
	req.Header.Set("If-None-Match", etag)
	again, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if again.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", again.StatusCode)
	}
}

func TestWellGeometry_NoActiveTrajectory(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/wells/w1/geometry", "")
	if resp.Status != 404 {
		t.Fatalf("expected 404, got %d", resp.Status)
	}
}

func TestWellPlot_Deprecated(t *testing.T) {
	app := setupApp(newFixture().deps)
	importSurvey(t, app)

	resp := doJSON(t, app, "GET", "/v1/wells/w1/plot", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if resp.get("Deprecation") != "true" {
		t.Errorf("expected Deprecation header")
	}
	if link := resp.get("Link"); link != `</v1/wells/w1/geometry>; rel="successor-version"` {
		t.Errorf("unexpected Link %q", link)
	}
}

func TestTrajectorySegment(t *testing.T) {
	app := setupApp(newFixture().deps)
	id := importSurvey(t, app)

	resp := doJSON(t, app, "GET", "/v1/trajectories/"+id+"/segment?start=250&end=750", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
	var seg handler.SegmentResponse
	_ = json.Unmarshal(resp.Body, &seg)
	if len(seg.Points) != 3 || seg.StartDepth != 250 || seg.EndDepth != 750 || seg.Clamped {
		t.Errorf("unexpected segment: %+v", seg)
	}

	resp = doJSON(t, app, "GET", "/v1/trajectories/"+id+"/segment?start=900&end=1500", "")
	_ = json.Unmarshal(resp.Body, &seg)
	if !seg.Clamped || seg.EndDepth != 1000 {
		t.Errorf("expected clamped segment ending at 1000, got %+v", seg)
	}
}

func TestTrajectorySegment_BadParams(t *testing.T) {
	app := setupApp(newFixture().deps)
	id := importSurvey(t, app)

	cases := map[string]int{
		"/v1/trajectories/" + id + "/segment":                   400,
		"/v1/trajectories/" + id + "/segment?start=x&end=10":    400,
		"/v1/trajectories/" + id + "/segment?start=500&end=100": 400,
		"/v1/trajectories/nope/segment?start=0&end=100":         404,
	}
	for path, want := range cases {
		if resp := doJSON(t, app, "GET", path, ""); resp.Status != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.Status)
		}
	}
}

func TestTrajectoryStationsAndSummary(t *testing.T) {
	app := setupApp(newFixture().deps)
	id := importSurvey(t, app)

	resp := doJSON(t, app, "GET", "/v1/trajectories/"+id+"/stations", "")
	var stations []domain.TrajectoryStation
	_ = json.Unmarshal(resp.Body, &stations)
	if len(stations) != 3 || stations[2].Depth != 1000 || stations[2].TVD <= 0 {
		t.Fatalf("unexpected stations: %+v", stations)
	}

	resp = doJSON(t, app, "GET", "/v1/trajectories/"+id+"/summary", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	var sum domain.TrajectorySummary
	_ = json.Unmarshal(resp.Body, &sum)
	if sum.BottomHole == nil || sum.BottomHole.Lat <= -12.5 {
		t.Errorf("expected bottom hole north of surface, got %+v", sum.BottomHole)
	}
}

func TestActivateAndDeleteTrajectory(t *testing.T) {
	app := setupApp(newFixture().deps)
	first := importSurvey(t, app)

	body := `{"trajectory_name":"Plan B","trajectory_type":"PLAN","survey":[{"MD":0,"Inc":0,"Azi":0},{"MD":100,"Inc":1,"Azi":10}]}`
	if resp := doJSON(t, app, "POST", "/v1/wells/w1/imports", body); resp.Status != 201 {
		t.Fatalf("second import: expected 201, got %d", resp.Status)
	}

	resp := doJSON(t, app, "POST", "/v1/trajectories/"+first+"/activate", "")
	if resp.Status != 200 {
		t.Fatalf("activate: expected 200, got %d", resp.Status)
	}

	resp = doJSON(t, app, "GET", "/v1/wells/w1/trajectories", "")
	var trajs []domain.Trajectory
	_ = json.Unmarshal(resp.Body, &trajs)
	active := 0
	for _, tr := range trajs {
		if tr.IsActive {
			active++
			if tr.ID != first {
				t.Errorf("expected %s active, got %s", first, tr.ID)
			}
		}
	}
	if len(trajs) != 2 || active != 1 {
		t.Fatalf("expected 2 trajectories with 1 active, got %d/%d", len(trajs), active)
	}

	if resp := doJSON(t, app, "DELETE", "/v1/trajectories/"+first, ""); resp.Status != 204 {
		t.Fatalf("delete: expected 204, got %d", resp.Status)
	}
	if resp := doJSON(t, app, "GET", "/v1/trajectories/"+first, ""); resp.Status != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.Status)
	}
	if resp := doJSON(t, app, "DELETE", "/v1/trajectories/"+first, ""); resp.Status != 404 {
		t.Fatalf("second delete: expected 404, got %d", resp.Status)
	}
}

// ---- GraphQL ----

func TestGraphQL_Trajectory(t *testing.T) {
	app := setupApp(newFixture().deps)
	id := importSurvey(t, app)

	q := fmt.Sprintf(`{"query":"{ trajectory(id: \"%s\") { name trajectory_type is_active } stations(id: \"%s\") { md tvd } }"}`, id, id)
	resp := doJSON(t, app, "POST", "/graphql", q)
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	var result struct {
		Data struct {
			Trajectory struct {
				Name     string `json:"name"`
				Type     string `json:"trajectory_type"`
				IsActive bool   `json:"is_active"`
			} `json:"trajectory"`
			Stations []struct {
				MD  float64 `json:"md"`
				TVD float64 `json:"tvd"`
			} `json:"stations"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Trajectory.Type != "REAL" || !result.Data.Trajectory.IsActive {
		t.Errorf("unexpected trajectory: %+v", result.Data.Trajectory)
	}
	if len(result.Data.Stations) != 3 {
		t.Errorf("expected 3 stations, got %d", len(result.Data.Stations))
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "POST", "/graphql", `{}`)
	if resp.Status != 400 {
		t.Fatalf("expected 400, got %d", resp.Status)
	}
}

// ---- Health & headers ----

func TestHealth(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/health", "")
	if resp.Status != 200 {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if resp.get("X-Api-Version") != "1.0.0" {
		t.Errorf("expected X-API-Version header")
	}
	if resp.get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("expected nosniff header")
	}
}

func TestReady_NoDatabase(t *testing.T) {
	app := setupApp(newFixture().deps)

	resp := doJSON(t, app, "GET", "/v1/ready", "")
	if resp.Status != 503 {
		t.Fatalf("expected 503, got %d", resp.Status)
	}
}
