package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// TrajectoryRepo implements ports.TrajectoryRepository with pgx.
type TrajectoryRepo struct {
	db *DB
}

// NewTrajectoryRepo creates a new TrajectoryRepo.
func NewTrajectoryRepo(db *DB) *TrajectoryRepo {
	return &TrajectoryRepo{db: db}
}

const trajectoryColumns = `id, well_id, source_import_id, name, trajectory_type,
	mag_declination, grid_convergence, is_active, description, created_at`

func scanTrajectory(row pgx.Row) (domain.Trajectory, error) {
	var t domain.Trajectory
	err := row.Scan(&t.ID, &t.WellID, &t.SourceImportID, &t.Name, &t.Type,
		&t.MagneticDeclination, &t.GridConvergence, &t.IsActive, &t.Description, &t.CreatedAt)
	return t, err
}

// Create stores the trajectory with its stations and geometry in one
// transaction. Stations keep their order through seq. An active trajectory
// replaces the well's current one in that same transaction.
func (r *TrajectoryRepo) Create(ctx context.Context, t *domain.Trajectory, stations []wellpath.Station, geometry []wellpath.GeometryRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if t.IsActive {
		if _, err := tx.Exec(ctx, `
			UPDATE trajectories SET is_active = FALSE WHERE well_id = $1 AND is_active
		`, t.WellID); err != nil {
			return fmt.Errorf("deactivate: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO trajectories (well_id, source_import_id, name, trajectory_type,
		                          mag_declination, grid_convergence, is_active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, t.WellID, t.SourceImportID, t.Name, t.Type,
		t.MagneticDeclination, t.GridConvergence, t.IsActive, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return mapErr(err)
	}

	batch := &pgx.Batch{}
	for i, s := range stations {
		batch.Queue(`
			INSERT INTO trajectory_stations (trajectory_id, seq, md, inclination, azimuth, tvd, north, east, dls)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, t.ID, i, s.Depth, s.Inclination, s.Azimuth, s.TVD, s.North, s.East, s.DLS)
	}
	for i, g := range geometry {
		batch.Queue(`
			INSERT INTO borehole_geometry (trajectory_id, seq, item_type, start_md, end_md, diameter, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, t.ID, i, g.Label, g.StartDepth, g.EndDepth, g.Diameter, g.Color)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a trajectory by UUID.
func (r *TrajectoryRepo) GetByID(ctx context.Context, id string) (*domain.Trajectory, error) {
	t, err := scanTrajectory(r.db.Pool.QueryRow(ctx, `SELECT `+trajectoryColumns+` FROM trajectories WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// BySourceImport returns the latest trajectory stored by an import.
func (r *TrajectoryRepo) BySourceImport(ctx context.Context, importID string) (*domain.Trajectory, error) {
	t, err := scanTrajectory(r.db.Pool.QueryRow(ctx, `
		SELECT `+trajectoryColumns+`
		FROM trajectories
		WHERE source_import_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, importID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// ListByWell returns every trajectory of a well, newest first.
func (r *TrajectoryRepo) ListByWell(ctx context.Context, wellID string) ([]domain.Trajectory, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+trajectoryColumns+`
		FROM trajectories
		WHERE well_id = $1
		ORDER BY created_at DESC
	`, wellID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Trajectory
	for rows.Next() {
		t, err := scanTrajectory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ActiveByWell returns the active trajectory of a well.
func (r *TrajectoryRepo) ActiveByWell(ctx context.Context, wellID string) (*domain.Trajectory, error) {
	t, err := scanTrajectory(r.db.Pool.QueryRow(ctx, `
		SELECT `+trajectoryColumns+`
		FROM trajectories
		WHERE well_id = $1 AND is_active
	`, wellID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// Stations returns the stations of a trajectory in stored order.
func (r *TrajectoryRepo) Stations(ctx context.Context, trajectoryID string) ([]wellpath.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT md, inclination, azimuth, tvd, north, east, dls
		FROM trajectory_stations
		WHERE trajectory_id = $1
		ORDER BY seq
	`, trajectoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wellpath.Station
	for rows.Next() {
		var s wellpath.Station
		if err := rows.Scan(&s.Depth, &s.Inclination, &s.Azimuth, &s.TVD, &s.North, &s.East, &s.DLS); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Geometry returns the mechanical records of a trajectory in stored order.
func (r *TrajectoryRepo) Geometry(ctx context.Context, trajectoryID string) ([]wellpath.GeometryRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT item_type, start_md, end_md, diameter, color
		FROM borehole_geometry
		WHERE trajectory_id = $1
		ORDER BY seq
	`, trajectoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wellpath.GeometryRecord
	for rows.Next() {
		var g wellpath.GeometryRecord
		if err := rows.Scan(&g.Label, &g.StartDepth, &g.EndDepth, &g.Diameter, &g.Color); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetActive deactivates the well's current trajectory and activates the
// given one.
func (r *TrajectoryRepo) SetActive(ctx context.Context, wellID, trajectoryID string) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE trajectories SET is_active = FALSE WHERE well_id = $1 AND is_active AND id <> $2
		`, wellID, trajectoryID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE trajectories SET is_active = TRUE WHERE id = $1 AND well_id = $2
		`, trajectoryID, wellID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Delete removes a trajectory. Stations and geometry cascade.
func (r *TrajectoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM trajectories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
