package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
)

// --- Unit costs -------------------------------------------------------------

func (s *Store) CreateUnitCost(ctx context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	if uc.ID == "" {
		uc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	uc.CreatedAt = now
	uc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.unit_cost_benchmarks
			(id, category, cost_code, description, unit, low_value, typical_value,
			 high_value, source, effective_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uc.ID, uc.Category, uc.CostCode, uc.Description, uc.Unit, uc.LowValue,
		uc.TypicalValue, uc.HighValue, uc.Source, uc.EffectiveYear, uc.CreatedAt, uc.UpdatedAt)
	if err != nil {
		return benchmark.UnitCost{}, err
	}
	return uc, nil
}

func (s *Store) UpdateUnitCost(ctx context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	existing, err := s.GetUnitCost(ctx, uc.ID)
	if err != nil {
		return benchmark.UnitCost{}, err
	}
	uc.CreatedAt = existing.CreatedAt
	uc.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.unit_cost_benchmarks
		SET category = $2, cost_code = $3, description = $4, unit = $5,
		    low_value = $6, typical_value = $7, high_value = $8, source = $9,
		    effective_year = $10, updated_at = $11
		WHERE id = $1
	`, uc.ID, uc.Category, uc.CostCode, uc.Description, uc.Unit, uc.LowValue,
		uc.TypicalValue, uc.HighValue, uc.Source, uc.EffectiveYear, uc.UpdatedAt)
	if err != nil {
		return benchmark.UnitCost{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return benchmark.UnitCost{}, sql.ErrNoRows
	}
	return uc, nil
}

const unitCostColumns = `id, category, cost_code, description, unit, low_value, typical_value,
	high_value, source, effective_year, created_at, updated_at`

func (s *Store) GetUnitCost(ctx context.Context, id string) (benchmark.UnitCost, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+unitCostColumns+`
		FROM landscape.unit_cost_benchmarks
		WHERE id = $1
	`, id)

	var uc benchmark.UnitCost
	if err := row.Scan(&uc.ID, &uc.Category, &uc.CostCode, &uc.Description, &uc.Unit,
		&uc.LowValue, &uc.TypicalValue, &uc.HighValue, &uc.Source, &uc.EffectiveYear,
		&uc.CreatedAt, &uc.UpdatedAt); err != nil {
		return benchmark.UnitCost{}, err
	}
	return uc, nil
}

func (s *Store) ListUnitCosts(ctx context.Context, category, search string) ([]benchmark.UnitCost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+unitCostColumns+`
		FROM landscape.unit_cost_benchmarks
		WHERE ($1 = '' OR lower(category) = lower($1))
		  AND ($2 = '' OR description ILIKE '%' || $2 || '%' OR cost_code ILIKE '%' || $2 || '%')
		ORDER BY cost_code
	`, category, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []benchmark.UnitCost
	for rows.Next() {
		var uc benchmark.UnitCost
		if err := rows.Scan(&uc.ID, &uc.Category, &uc.CostCode, &uc.Description, &uc.Unit,
			&uc.LowValue, &uc.TypicalValue, &uc.HighValue, &uc.Source, &uc.EffectiveYear,
			&uc.CreatedAt, &uc.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, uc)
	}
	return result, rows.Err()
}

func (s *Store) DeleteUnitCost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.unit_cost_benchmarks WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Growth-rate sets -------------------------------------------------------

func (s *Store) ReplaceGrowthRateSet(ctx context.Context, set benchmark.GrowthRateSet) (benchmark.GrowthRateSet, error) {
	now := time.Now().UTC()
	isNew := set.ID == ""
	if isNew {
		set.ID = uuid.NewString()
		set.CreatedAt = now
	}
	set.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if isNew {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO landscape.growth_rate_sets (id, name, kind, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			`, set.ID, set.Name, set.Kind, set.CreatedAt, set.UpdatedAt); err != nil {
				return err
			}
		} else {
			result, err := tx.ExecContext(ctx, `
				UPDATE landscape.growth_rate_sets
				SET name = $2, kind = $3, updated_at = $4
				WHERE id = $1
			`, set.ID, set.Name, set.Kind, set.UpdatedAt)
			if err != nil {
				return err
			}
			if rows, _ := result.RowsAffected(); rows == 0 {
				return sql.ErrNoRows
			}
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM landscape.growth_rate_steps WHERE set_id = $1
			`, set.ID); err != nil {
				return err
			}
		}

		for i := range set.Steps {
			set.Steps[i].ID = uuid.NewString()
			set.Steps[i].SetID = set.ID
			set.Steps[i].StepOrder = i + 1
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO landscape.growth_rate_steps
					(id, set_id, step_order, from_period, thru_period, annual_rate)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, set.Steps[i].ID, set.ID, set.Steps[i].StepOrder,
				set.Steps[i].FromPeriod, set.Steps[i].ThruPeriod, set.Steps[i].AnnualRate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return benchmark.GrowthRateSet{}, err
	}
	return set, nil
}

func (s *Store) GetGrowthRateSet(ctx context.Context, id string) (benchmark.GrowthRateSet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, created_at, updated_at
		FROM landscape.growth_rate_sets
		WHERE id = $1
	`, id)

	var set benchmark.GrowthRateSet
	if err := row.Scan(&set.ID, &set.Name, &set.Kind, &set.CreatedAt, &set.UpdatedAt); err != nil {
		return benchmark.GrowthRateSet{}, err
	}

	steps, err := s.listSteps(ctx, set.ID)
	if err != nil {
		return benchmark.GrowthRateSet{}, err
	}
	set.Steps = steps
	return set, nil
}

func (s *Store) listSteps(ctx context.Context, setID string) ([]benchmark.GrowthStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, set_id, step_order, from_period, thru_period, annual_rate
		FROM landscape.growth_rate_steps
		WHERE set_id = $1
		ORDER BY step_order
	`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []benchmark.GrowthStep
	for rows.Next() {
		var st benchmark.GrowthStep
		if err := rows.Scan(&st.ID, &st.SetID, &st.StepOrder, &st.FromPeriod,
			&st.ThruPeriod, &st.AnnualRate); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *Store) ListGrowthRateSets(ctx context.Context, kind benchmark.GrowthKind) ([]benchmark.GrowthRateSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, created_at, updated_at
		FROM landscape.growth_rate_sets
		WHERE ($1 = '' OR kind = $1)
		ORDER BY name
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []benchmark.GrowthRateSet
	for rows.Next() {
		var set benchmark.GrowthRateSet
		if err := rows.Scan(&set.ID, &set.Name, &set.Kind, &set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		steps, err := s.listSteps(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Steps = steps
	}
	return result, nil
}

func (s *Store) DeleteGrowthRateSet(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.growth_rate_steps WHERE set_id = $1
		`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.growth_rate_sets WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// --- Suggestions ------------------------------------------------------------

const suggestionColumns = `id, document_id, category, cost_code, description, unit, typical_value,
	confidence, status, rejection_reason, benchmark_id, created_at, updated_at`

func scanSuggestion(row interface{ Scan(...interface{}) error }) (benchmark.Suggestion, error) {
	var (
		sg          benchmark.Suggestion
		documentID  sql.NullString
		reason      sql.NullString
		benchmarkID sql.NullString
	)
	if err := row.Scan(&sg.ID, &documentID, &sg.Category, &sg.CostCode, &sg.Description,
		&sg.Unit, &sg.TypicalValue, &sg.Confidence, &sg.Status, &reason, &benchmarkID,
		&sg.CreatedAt, &sg.UpdatedAt); err != nil {
		return benchmark.Suggestion{}, err
	}
	sg.DocumentID = documentID.String
	sg.RejectionReason = reason.String
	sg.BenchmarkID = benchmarkID.String
	return sg, nil
}

func (s *Store) CreateSuggestion(ctx context.Context, sg benchmark.Suggestion) (benchmark.Suggestion, error) {
	if sg.ID == "" {
		sg.ID = uuid.NewString()
	}
	if sg.Status == "" {
		sg.Status = benchmark.SuggestionPending
	}
	now := time.Now().UTC()
	sg.CreatedAt = now
	sg.UpdatedAt = now

	var documentID interface{}
	if sg.DocumentID != "" {
		documentID = sg.DocumentID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.benchmark_suggestions
			(id, document_id, category, cost_code, description, unit, typical_value,
			 confidence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sg.ID, documentID, sg.Category, sg.CostCode, sg.Description, sg.Unit,
		sg.TypicalValue, sg.Confidence, sg.Status, sg.CreatedAt, sg.UpdatedAt)
	if err != nil {
		return benchmark.Suggestion{}, err
	}
	return sg, nil
}

func (s *Store) GetSuggestion(ctx context.Context, id string) (benchmark.Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM landscape.benchmark_suggestions
		WHERE id = $1
	`, id)
	return scanSuggestion(row)
}

func (s *Store) ListSuggestions(ctx context.Context, status benchmark.SuggestionStatus) ([]benchmark.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM landscape.benchmark_suggestions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []benchmark.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sg)
	}
	return result, rows.Err()
}

func (s *Store) ApproveSuggestion(ctx context.Context, id string) (benchmark.Suggestion, benchmark.UnitCost, error) {
	sg, err := s.GetSuggestion(ctx, id)
	if err != nil {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, err
	}
	if sg.Status != benchmark.SuggestionPending {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, fmt.Errorf("suggestion %s is %s, not pending", id, sg.Status)
	}

	now := time.Now().UTC()
	uc := benchmark.UnitCost{
		ID:            uuid.NewString(),
		Category:      sg.Category,
		CostCode:      sg.CostCode,
		Description:   sg.Description,
		Unit:          sg.Unit,
		TypicalValue:  sg.TypicalValue,
		Source:        "ai_suggestion",
		EffectiveYear: now.Year(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO landscape.unit_cost_benchmarks
				(id, category, cost_code, description, unit, low_value, typical_value,
				 high_value, source, effective_year, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, uc.ID, uc.Category, uc.CostCode, uc.Description, uc.Unit, uc.LowValue,
			uc.TypicalValue, uc.HighValue, uc.Source, uc.EffectiveYear, uc.CreatedAt, uc.UpdatedAt); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE landscape.benchmark_suggestions
			SET status = $2, benchmark_id = $3, updated_at = $4
			WHERE id = $1 AND status = $5
		`, id, benchmark.SuggestionApproved, uc.ID, now, benchmark.SuggestionPending)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("suggestion %s no longer pending", id)
		}
		return nil
	})
	if err != nil {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, err
	}

	sg.Status = benchmark.SuggestionApproved
	sg.BenchmarkID = uc.ID
	sg.UpdatedAt = now
	return sg, uc, nil
}

func (s *Store) RejectSuggestion(ctx context.Context, id, reason string) (benchmark.Suggestion, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.benchmark_suggestions
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`, id, benchmark.SuggestionRejected, reason, now, benchmark.SuggestionPending)
	if err != nil {
		return benchmark.Suggestion{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		if _, getErr := s.GetSuggestion(ctx, id); getErr != nil {
			return benchmark.Suggestion{}, getErr
		}
		return benchmark.Suggestion{}, fmt.Errorf("suggestion %s is not pending", id)
	}
	return s.GetSuggestion(ctx, id)
}
