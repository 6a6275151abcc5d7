package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/wellpath/internal/core/domain"
)

// ImportRepo implements ports.ImportRepository with pgx.
type ImportRepo struct {
	db *DB
}

// NewImportRepo creates a new ImportRepo.
func NewImportRepo(db *DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// Create inserts an import and fills in its ID and creation time.
func (r *ImportRepo) Create(ctx context.Context, imp *domain.SurveyImport) error {
	if imp.Status == "" {
		imp.Status = domain.ImportPending
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO survey_imports (well_id, filename, uploaded_by, status, request_key)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, created_at
	`, imp.WellID, imp.Filename, imp.UploadedBy, imp.Status, imp.RequestKey).Scan(&imp.ID, &imp.CreatedAt)
	return mapErr(err)
}

// UpdateStatus records the outcome of an import.
func (r *ImportRepo) UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, log string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE survey_imports SET status = $2, processing_log = $3 WHERE id = $1
	`, id, status, log)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const importColumns = `id, well_id, filename, uploaded_by, status, processing_log,
	COALESCE(request_key, ''), created_at`

func scanImport(row pgx.Row) (domain.SurveyImport, error) {
	var imp domain.SurveyImport
	err := row.Scan(&imp.ID, &imp.WellID, &imp.Filename, &imp.UploadedBy, &imp.Status,
		&imp.ProcessingLog, &imp.RequestKey, &imp.CreatedAt)
	return imp, err
}

// GetByID returns an import by UUID.
func (r *ImportRepo) GetByID(ctx context.Context, id string) (*domain.SurveyImport, error) {
	imp, err := scanImport(r.db.Pool.QueryRow(ctx, `SELECT `+importColumns+` FROM survey_imports WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &imp, nil
}

// GetByRequestKey returns the import a request created for the well.
func (r *ImportRepo) GetByRequestKey(ctx context.Context, wellID, key string) (*domain.SurveyImport, error) {
	imp, err := scanImport(r.db.Pool.QueryRow(ctx, `
		SELECT `+importColumns+`
		FROM survey_imports
		WHERE well_id = $1 AND request_key = $2
	`, wellID, key))
	if err != nil {
		return nil, mapErr(err)
	}
	return &imp, nil
}

// RecentByWell returns the latest imports of a well, newest first.
func (r *ImportRepo) RecentByWell(ctx context.Context, wellID string, limit int) ([]domain.SurveyImport, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+importColumns+`
		FROM survey_imports
		WHERE well_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, wellID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []domain.SurveyImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}
