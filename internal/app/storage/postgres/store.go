// Package postgres implements the storage interfaces against the landscape
// schema in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/parcel"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.LeaseStore = (*Store)(nil)
var _ storage.BenchmarkStore = (*Store)(nil)
var _ storage.OpexStore = (*Store)(nil)
var _ storage.CompStore = (*Store)(nil)
var _ storage.CostStore = (*Store)(nil)
var _ storage.DocumentStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB { return s.db }

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- ProjectStore -----------------------------------------------------------

func (s *Store) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.projects
			(id, owner, name, project_type, status, address, city, state, zip,
			 analysis_start, hold_period_years, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.Owner, p.Name, p.Type, p.Status, p.Address, p.City, p.State, p.Zip,
		p.AnalysisStart, p.HoldPeriodYears, p.Notes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	existing, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return project.Project{}, err
	}

	p.Owner = existing.Owner
	p.CreatedAt = existing.CreatedAt
	p.DeletedAt = existing.DeletedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.projects
		SET name = $2, project_type = $3, status = $4, address = $5, city = $6,
		    state = $7, zip = $8, analysis_start = $9, hold_period_years = $10,
		    notes = $11, updated_at = $12
		WHERE id = $1
	`, p.ID, p.Name, p.Type, p.Status, p.Address, p.City, p.State, p.Zip,
		p.AnalysisStart, p.HoldPeriodYears, p.Notes, p.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return project.Project{}, sql.ErrNoRows
	}
	return p, nil
}

const projectColumns = `id, owner, name, project_type, status, address, city, state, zip,
	analysis_start, hold_period_years, notes, created_at, updated_at, deleted_at`

func scanProject(row interface{ Scan(...interface{}) error }) (project.Project, error) {
	var (
		p         project.Project
		deletedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Type, &p.Status, &p.Address,
		&p.City, &p.State, &p.Zip, &p.AnalysisStart, &p.HoldPeriodYears, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
		return project.Project{}, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM landscape.projects
		WHERE id = $1
	`, id)
	return scanProject(row)
}

func (s *Store) ListProjects(ctx context.Context, filter storage.ProjectFilter) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM landscape.projects
		WHERE ($1 = '' OR owner = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR project_type = $3)
		  AND ($4 OR deleted_at IS NULL)
		ORDER BY created_at
	`, filter.Owner, string(filter.Status), string(filter.Type), filter.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) SoftDeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.projects
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) RestoreProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.projects
		SET deleted_at = NULL, updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) HardDeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.projects WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Parcels ----------------------------------------------------------------

func (s *Store) CreateParcel(ctx context.Context, p parcel.Parcel) (parcel.Parcel, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.parcels
			(id, project_id, apn, acreage, zoning, land_use, entitlement_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.ProjectID, p.APN, p.Acreage, p.Zoning, p.LandUse, p.EntitlementStatus, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return parcel.Parcel{}, err
	}
	return p, nil
}

func (s *Store) UpdateParcel(ctx context.Context, p parcel.Parcel) (parcel.Parcel, error) {
	existing, err := s.GetParcel(ctx, p.ID)
	if err != nil {
		return parcel.Parcel{}, err
	}

	p.ProjectID = existing.ProjectID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.parcels
		SET apn = $2, acreage = $3, zoning = $4, land_use = $5,
		    entitlement_status = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, p.APN, p.Acreage, p.Zoning, p.LandUse, p.EntitlementStatus, p.UpdatedAt)
	if err != nil {
		return parcel.Parcel{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return parcel.Parcel{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetParcel(ctx context.Context, id string) (parcel.Parcel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, apn, acreage, zoning, land_use, entitlement_status, created_at, updated_at
		FROM landscape.parcels
		WHERE id = $1
	`, id)

	var p parcel.Parcel
	if err := row.Scan(&p.ID, &p.ProjectID, &p.APN, &p.Acreage, &p.Zoning,
		&p.LandUse, &p.EntitlementStatus, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return parcel.Parcel{}, err
	}
	return p, nil
}

func (s *Store) ListParcels(ctx context.Context, projectID string) ([]parcel.Parcel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, apn, acreage, zoning, land_use, entitlement_status, created_at, updated_at
		FROM landscape.parcels
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []parcel.Parcel
	for rows.Next() {
		var p parcel.Parcel
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.APN, &p.Acreage, &p.Zoning,
			&p.LandUse, &p.EntitlementStatus, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteParcel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.parcels WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
