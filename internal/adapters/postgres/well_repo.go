package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wellpath/internal/core/domain"
)

// WellRepo implements ports.WellRepository with pgx.
type WellRepo struct {
	db *DB
}

// NewWellRepo creates a new WellRepo.
func NewWellRepo(db *DB) *WellRepo {
	return &WellRepo{db: db}
}

const wellColumns = `id, name, location, latitude, longitude, elevation, is_active, created_at, updated_at`

func scanWell(row pgx.Row) (domain.Well, error) {
	var (
		w        domain.Well
		lat, lon *float64
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Location, &lat, &lon, &w.Elevation, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return w, err
	}
	if lat != nil && lon != nil {
		w.Surface = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	return w, nil
}

// Create inserts a well and fills in its ID and timestamps.
func (r *WellRepo) Create(ctx context.Context, w *domain.Well) error {
	var lat, lon *float64
	if w.Surface != nil {
		lat, lon = &w.Surface.Lat, &w.Surface.Lon
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO wells (name, location, latitude, longitude, elevation, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, w.Name, w.Location, lat, lon, w.Elevation, w.IsActive).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	return mapErr(err)
}

// GetByID returns a well by UUID.
func (r *WellRepo) GetByID(ctx context.Context, id string) (*domain.Well, error) {
	w, err := scanWell(r.db.Pool.QueryRow(ctx, `SELECT `+wellColumns+` FROM wells WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

// List returns all wells ordered by name.
func (r *WellRepo) List(ctx context.Context) ([]domain.Well, error) {
	return r.query(ctx, `SELECT `+wellColumns+` FROM wells ORDER BY name`)
}

// FindNearby returns wells whose surface location falls inside bounds.
// A limit of zero returns every match.
func (r *WellRepo) FindNearby(ctx context.Context, b domain.Bounds, limit int) ([]domain.Well, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	return r.query(ctx, `
		SELECT `+wellColumns+`
		FROM wells
		WHERE latitude BETWEEN $1 AND $3
		  AND longitude BETWEEN $2 AND $4
		ORDER BY name
		LIMIT $5
	`, b.MinLat, b.MinLon, b.MaxLat, b.MaxLon, lim)
}

func (r *WellRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Well, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wells []domain.Well
	for rows.Next() {
		w, err := scanWell(rows)
		if err != nil {
			return nil, err
		}
		wells = append(wells, w)
	}
	return wells, rows.Err()
}
