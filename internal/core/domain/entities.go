package domain

import (
	"time"

	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// Well is the root entity all surveys belong to. The surface location is the
// origin of every trajectory's local north/east/tvd frame.
type Well struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Surface   *GeoPoint `json:"surface,omitempty"`
	Elevation float64   `json:"elevation"` // metres above sea level (GL/RKB)
	IsActive  bool      `json:"is_active"`
	Distance  *float64  `json:"distance,omitempty"` // computed field
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportStatus is the lifecycle of an uploaded survey.
type ImportStatus string

const (
	ImportPending   ImportStatus = "PENDING"
	ImportProcessed ImportStatus = "PROCESSED"
	ImportError     ImportStatus = "ERROR"
)

// SurveyImport is the audit record of one uploaded survey.
type SurveyImport struct {
	ID            string       `json:"id"`
	WellID        string       `json:"well_id"`
	Filename      string       `json:"filename"`
	UploadedBy    string       `json:"uploaded_by,omitempty"`
	Status        ImportStatus `json:"status"`
	ProcessingLog string       `json:"processing_log,omitempty"`
	RequestKey    string       `json:"request_key,omitempty"` // set when a retried request must find it again
	CreatedAt     time.Time    `json:"created_at"`
}

// TrajectoryType distinguishes surveyed paths from plans.
type TrajectoryType string

const (
	TrajectoryReal TrajectoryType = "REAL"
	TrajectoryPlan TrajectoryType = "PLAN"
)

// Valid reports whether t is a known trajectory type.
func (t TrajectoryType) Valid() bool {
	return t == TrajectoryReal || t == TrajectoryPlan
}

// Trajectory is one computed version of a well's path (a survey run or a plan).
type Trajectory struct {
	ID                  string         `json:"id"`
	WellID              string         `json:"well_id"`
	SourceImportID      *string        `json:"source_import_id,omitempty"`
	Name                string         `json:"name"`
	Type                TrajectoryType `json:"trajectory_type"`
	MagneticDeclination float64        `json:"mag_declination"`
	GridConvergence     float64        `json:"grid_convergence"`
	IsActive            bool           `json:"is_active"`
	Description         string         `json:"description,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Reference returns the azimuth corrections stored on the trajectory.
func (t *Trajectory) Reference() wellpath.Reference {
	return wellpath.Reference{
		MagneticDeclination: t.MagneticDeclination,
		GridConvergence:     t.GridConvergence,
	}
}

// TrajectoryStation is a persisted positioned station.
type TrajectoryStation struct {
	TrajectoryID string `json:"trajectory_id"`
	wellpath.Station
	Attributes map[string]any `json:"attributes,omitempty"`
}

// BoreholeGeometry is a persisted casing/liner/open-hole section.
type BoreholeGeometry struct {
	ID           string `json:"id"`
	TrajectoryID string `json:"trajectory_id"`
	wellpath.GeometryRecord
}

// SurveyRow is one row of the Survey sheet. Missing columns stay nil.
type SurveyRow struct {
	MD  *float64 `json:"MD"`
	Inc *float64 `json:"Inc"`
	Azi *float64 `json:"Azi"`
}

// MechanicalRow is one row of the Mechanical sheet. Diameter is kept raw
// (number or locale-formatted string) until sanitized.
type MechanicalRow struct {
	Item     string   `json:"Item"`
	TopMD    *float64 `json:"Top_MD"`
	BottomMD *float64 `json:"Bottom_MD"`
	Diameter any      `json:"Diameter"`
	Color    string   `json:"Color"`
}

// SurveyPayload is an already-parsed survey workbook.
type SurveyPayload struct {
	Filename            string          `json:"filename"`
	UploadedBy          string          `json:"uploaded_by,omitempty"`
	TrajectoryName      string          `json:"trajectory_name,omitempty"`
	TrajectoryType      TrajectoryType  `json:"trajectory_type,omitempty"`
	MagneticDeclination float64         `json:"mag_declination"`
	GridConvergence     float64         `json:"grid_convergence"`
	Survey              []SurveyRow     `json:"survey"`
	Mechanical          []MechanicalRow `json:"mechanical,omitempty"`
}

// ImportResult is returned after a survey import, successful or not.
type ImportResult struct {
	Import     *SurveyImport `json:"import"`
	Trajectory *Trajectory   `json:"trajectory,omitempty"`
	Stations   int           `json:"stations"`
	Geometry   int           `json:"geometry"`
}

// TrajectorySummary extends the engine summary with the bottom-hole geographic
// location when the well has a surface location.
type TrajectorySummary struct {
	TrajectoryID string `json:"trajectory_id"`
	wellpath.Summary
	BottomHole *GeoPoint `json:"bottom_hole,omitempty"`
}

// GeometrySet is the renderable geometry of one trajectory.
type GeometrySet struct {
	TrajectoryID string                `json:"trajectory_id"`
	Name         string                `json:"name"`
	Descriptors  []wellpath.Descriptor `json:"descriptors"`
	Warnings     []wellpath.Warning    `json:"warnings,omitempty"`
}

// TrajectoryComputed is published after a survey import succeeds.
type TrajectoryComputed struct {
	WellID       string    `json:"well_id"`
	TrajectoryID string    `json:"trajectory_id"`
	ImportID     string    `json:"import_id"`
	Stations     int       `json:"stations"`
	Geometry     int       `json:"geometry"`
	Time         time.Time `json:"time"`
}

// ImportFailed is published when a survey import is rejected.
type ImportFailed struct {
	WellID   string    `json:"well_id"`
	ImportID string    `json:"import_id"`
	Error    string    `json:"error"`
	Time     time.Time `json:"time"`
}
