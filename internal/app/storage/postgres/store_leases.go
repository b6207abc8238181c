package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
)

const leaseColumns = `id, project_id, tenant_name, suite, rentable_sf, commencement, expiration,
	base_rent_psf, escalation_pct, recovery_type, free_rent_months, status,
	termination_date, termination_reason, created_at, updated_at`

func scanLease(row interface{ Scan(...interface{}) error }) (lease.Lease, error) {
	var (
		l          lease.Lease
		termDate   sql.NullTime
		termReason sql.NullString
	)
	if err := row.Scan(&l.ID, &l.ProjectID, &l.TenantName, &l.Suite, &l.RentableSF,
		&l.Commencement, &l.Expiration, &l.BaseRentPSF, &l.EscalationPct,
		&l.RecoveryType, &l.FreeRentMonths, &l.Status, &termDate, &termReason,
		&l.CreatedAt, &l.UpdatedAt); err != nil {
		return lease.Lease{}, err
	}
	if termDate.Valid {
		t := termDate.Time
		l.TerminationDate = &t
	}
	if termReason.Valid {
		l.TerminationReason = termReason.String
	}
	return l, nil
}

func (s *Store) CreateLease(ctx context.Context, l lease.Lease) (lease.Lease, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.leases
			(id, project_id, tenant_name, suite, rentable_sf, commencement, expiration,
			 base_rent_psf, escalation_pct, recovery_type, free_rent_months, status,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, l.ID, l.ProjectID, l.TenantName, l.Suite, l.RentableSF, l.Commencement,
		l.Expiration, l.BaseRentPSF, l.EscalationPct, l.RecoveryType,
		l.FreeRentMonths, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return lease.Lease{}, err
	}
	return l, nil
}

func (s *Store) UpdateLease(ctx context.Context, l lease.Lease) (lease.Lease, error) {
	existing, err := s.GetLease(ctx, l.ID)
	if err != nil {
		return lease.Lease{}, err
	}

	l.ProjectID = existing.ProjectID
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = time.Now().UTC()

	var termDate interface{}
	if l.TerminationDate != nil {
		termDate = *l.TerminationDate
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.leases
		SET tenant_name = $2, suite = $3, rentable_sf = $4, commencement = $5,
		    expiration = $6, base_rent_psf = $7, escalation_pct = $8,
		    recovery_type = $9, free_rent_months = $10, status = $11,
		    termination_date = $12, termination_reason = $13, updated_at = $14
		WHERE id = $1
	`, l.ID, l.TenantName, l.Suite, l.RentableSF, l.Commencement, l.Expiration,
		l.BaseRentPSF, l.EscalationPct, l.RecoveryType, l.FreeRentMonths,
		l.Status, termDate, l.TerminationReason, l.UpdatedAt)
	if err != nil {
		return lease.Lease{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return lease.Lease{}, sql.ErrNoRows
	}
	return l, nil
}

func (s *Store) GetLease(ctx context.Context, id string) (lease.Lease, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+leaseColumns+`
		FROM landscape.leases
		WHERE id = $1
	`, id)
	return scanLease(row)
}

func (s *Store) ListLeases(ctx context.Context, projectID string) ([]lease.Lease, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+leaseColumns+`
		FROM landscape.leases
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lease.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *Store) DeleteLease(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.leases WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
