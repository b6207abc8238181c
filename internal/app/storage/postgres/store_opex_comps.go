package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
)

// --- OpexStore --------------------------------------------------------------

func (s *Store) UpsertOpexEntry(ctx context.Context, e opex.Entry) (opex.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	// One entry per project+field; conflicting writes replace in place.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO landscape.opex_entries
			(id, project_id, field_key, amount, basis, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id, field_key) DO UPDATE
		SET amount = EXCLUDED.amount, basis = EXCLUDED.basis,
		    notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, e.ID, e.ProjectID, e.FieldKey, e.Amount, e.Basis, e.Notes, e.CreatedAt, e.UpdatedAt)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return opex.Entry{}, err
	}
	return e, nil
}

func (s *Store) GetOpexEntry(ctx context.Context, id string) (opex.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, field_key, amount, basis, notes, created_at, updated_at
		FROM landscape.opex_entries
		WHERE id = $1
	`, id)

	var e opex.Entry
	if err := row.Scan(&e.ID, &e.ProjectID, &e.FieldKey, &e.Amount, &e.Basis,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return opex.Entry{}, err
	}
	return e, nil
}

func (s *Store) ListOpexEntries(ctx context.Context, projectID string) ([]opex.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, field_key, amount, basis, notes, created_at, updated_at
		FROM landscape.opex_entries
		WHERE project_id = $1
		ORDER BY field_key
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []opex.Entry
	for rows.Next() {
		var e opex.Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.FieldKey, &e.Amount, &e.Basis,
			&e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) DeleteOpexEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.opex_entries WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- CompStore --------------------------------------------------------------

const compColumns = `id, property_name, market, submarket, property_type, year_built, units,
	avg_unit_sf, asking_rent, occupancy_pct, distance_miles, notes, created_at, updated_at`

func scanComp(row interface{ Scan(...interface{}) error }) (marketcomp.Comp, error) {
	var c marketcomp.Comp
	if err := row.Scan(&c.ID, &c.PropertyName, &c.Market, &c.Submarket, &c.PropertyType,
		&c.YearBuilt, &c.Units, &c.AvgUnitSF, &c.AskingRent, &c.OccupancyPct,
		&c.DistanceMiles, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return marketcomp.Comp{}, err
	}
	return c, nil
}

func (s *Store) CreateComp(ctx context.Context, c marketcomp.Comp) (marketcomp.Comp, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.market_comps
			(id, property_name, market, submarket, property_type, year_built, units,
			 avg_unit_sf, asking_rent, occupancy_pct, distance_miles, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, c.ID, c.PropertyName, c.Market, c.Submarket, c.PropertyType, c.YearBuilt,
		c.Units, c.AvgUnitSF, c.AskingRent, c.OccupancyPct, c.DistanceMiles,
		c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return marketcomp.Comp{}, err
	}
	return c, nil
}

func (s *Store) UpdateComp(ctx context.Context, c marketcomp.Comp) (marketcomp.Comp, error) {
	existing, err := s.GetComp(ctx, c.ID)
	if err != nil {
		return marketcomp.Comp{}, err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.market_comps
		SET property_name = $2, market = $3, submarket = $4, property_type = $5,
		    year_built = $6, units = $7, avg_unit_sf = $8, asking_rent = $9,
		    occupancy_pct = $10, distance_miles = $11, notes = $12, updated_at = $13
		WHERE id = $1
	`, c.ID, c.PropertyName, c.Market, c.Submarket, c.PropertyType, c.YearBuilt,
		c.Units, c.AvgUnitSF, c.AskingRent, c.OccupancyPct, c.DistanceMiles,
		c.Notes, c.UpdatedAt)
	if err != nil {
		return marketcomp.Comp{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return marketcomp.Comp{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) GetComp(ctx context.Context, id string) (marketcomp.Comp, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+compColumns+`
		FROM landscape.market_comps
		WHERE id = $1
	`, id)
	return scanComp(row)
}

func (s *Store) ListComps(ctx context.Context, market string) ([]marketcomp.Comp, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+compColumns+`
		FROM landscape.market_comps
		WHERE ($1 = '' OR lower(market) = lower($1))
		ORDER BY property_name
	`, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []marketcomp.Comp
	for rows.Next() {
		c, err := scanComp(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteComp(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.market_comps WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
