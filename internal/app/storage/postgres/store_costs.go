package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
)

// --- Templates --------------------------------------------------------------

func (s *Store) CreateTemplate(ctx context.Context, t costs.Template) (costs.Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO landscape.cost_templates (id, name, project_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, t.ID, t.Name, t.ProjectType, t.CreatedAt, t.UpdatedAt); err != nil {
			return err
		}
		return insertTemplateLines(ctx, tx, t.ID, t.Lines)
	})
	if err != nil {
		return costs.Template{}, err
	}
	for i := range t.Lines {
		t.Lines[i].TemplateID = t.ID
		t.Lines[i].LineOrder = i + 1
	}
	return t, nil
}

func insertTemplateLines(ctx context.Context, tx *sql.Tx, templateID string, lines []costs.TemplateLine) error {
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.NewString()
		}
		var benchmarkID interface{}
		if lines[i].BenchmarkID != "" {
			benchmarkID = lines[i].BenchmarkID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO landscape.cost_template_lines
				(id, template_id, line_order, category, cost_code, description, unit,
				 quantity, unit_cost, benchmark_id, contingency_pct)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, lines[i].ID, templateID, i+1, lines[i].Category, lines[i].CostCode,
			lines[i].Description, lines[i].Unit, lines[i].Quantity, lines[i].UnitCost,
			benchmarkID, lines[i].ContingencyPct); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ReplaceTemplateLines(ctx context.Context, templateID string, lines []costs.TemplateLine) (costs.Template, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE landscape.cost_templates SET updated_at = $2 WHERE id = $1
		`, templateID, time.Now().UTC())
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return sql.ErrNoRows
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.cost_template_lines WHERE template_id = $1
		`, templateID); err != nil {
			return err
		}
		return insertTemplateLines(ctx, tx, templateID, lines)
	})
	if err != nil {
		return costs.Template{}, err
	}
	return s.GetTemplate(ctx, templateID)
}

func (s *Store) GetTemplate(ctx context.Context, id string) (costs.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, project_type, created_at, updated_at
		FROM landscape.cost_templates
		WHERE id = $1
	`, id)

	var t costs.Template
	if err := row.Scan(&t.ID, &t.Name, &t.ProjectType, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return costs.Template{}, err
	}

	lines, err := s.listTemplateLines(ctx, t.ID)
	if err != nil {
		return costs.Template{}, err
	}
	t.Lines = lines
	return t, nil
}

func (s *Store) listTemplateLines(ctx context.Context, templateID string) ([]costs.TemplateLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, line_order, category, cost_code, description, unit,
		       quantity, unit_cost, benchmark_id, contingency_pct
		FROM landscape.cost_template_lines
		WHERE template_id = $1
		ORDER BY line_order
	`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []costs.TemplateLine
	for rows.Next() {
		var (
			l           costs.TemplateLine
			benchmarkID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TemplateID, &l.LineOrder, &l.Category, &l.CostCode,
			&l.Description, &l.Unit, &l.Quantity, &l.UnitCost, &benchmarkID, &l.ContingencyPct); err != nil {
			return nil, err
		}
		l.BenchmarkID = benchmarkID.String
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Store) ListTemplates(ctx context.Context, projectType string) ([]costs.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, project_type, created_at, updated_at
		FROM landscape.cost_templates
		WHERE ($1 = '' OR project_type = $1)
		ORDER BY name
	`, projectType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []costs.Template
	for rows.Next() {
		var t costs.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.ProjectType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := s.listTemplateLines(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.cost_template_lines WHERE template_id = $1
		`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.cost_templates WHERE id = $1
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

// --- Budget lines -----------------------------------------------------------

func (s *Store) CloneTemplateToBudget(ctx context.Context, templateID, projectID string) ([]costs.BudgetLine, error) {
	t, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]costs.BudgetLine, 0, len(t.Lines))

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.project_budget_lines
			WHERE project_id = $1 AND template_id = $2
		`, projectID, templateID); err != nil {
			return err
		}

		for _, line := range t.Lines {
			bl := costs.BudgetLine{
				ID:             uuid.NewString(),
				ProjectID:      projectID,
				TemplateID:     templateID,
				LineOrder:      line.LineOrder,
				Category:       line.Category,
				CostCode:       line.CostCode,
				Description:    line.Description,
				Unit:           line.Unit,
				Quantity:       line.Quantity,
				UnitCost:       line.UnitCost,
				ContingencyPct: line.ContingencyPct,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO landscape.project_budget_lines
					(id, project_id, template_id, line_order, category, cost_code,
					 description, unit, quantity, unit_cost, contingency_pct, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			`, bl.ID, bl.ProjectID, bl.TemplateID, bl.LineOrder, bl.Category, bl.CostCode,
				bl.Description, bl.Unit, bl.Quantity, bl.UnitCost, bl.ContingencyPct,
				bl.CreatedAt, bl.UpdatedAt); err != nil {
				return err
			}
			out = append(out, bl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListBudgetLines(ctx context.Context, projectID string) ([]costs.BudgetLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, template_id, line_order, category, cost_code,
		       description, unit, quantity, unit_cost, contingency_pct, created_at, updated_at
		FROM landscape.project_budget_lines
		WHERE project_id = $1
		ORDER BY line_order
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []costs.BudgetLine
	for rows.Next() {
		var (
			l          costs.BudgetLine
			templateID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.ProjectID, &templateID, &l.LineOrder, &l.Category,
			&l.CostCode, &l.Description, &l.Unit, &l.Quantity, &l.UnitCost,
			&l.ContingencyPct, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.TemplateID = templateID.String
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *Store) GetBudgetLine(ctx context.Context, id string) (costs.BudgetLine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, template_id, line_order, category, cost_code,
		       description, unit, quantity, unit_cost, contingency_pct, created_at, updated_at
		FROM landscape.project_budget_lines
		WHERE id = $1
	`, id)

	var (
		l          costs.BudgetLine
		templateID sql.NullString
	)
	if err := row.Scan(&l.ID, &l.ProjectID, &templateID, &l.LineOrder, &l.Category,
		&l.CostCode, &l.Description, &l.Unit, &l.Quantity, &l.UnitCost,
		&l.ContingencyPct, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return costs.BudgetLine{}, err
	}
	l.TemplateID = templateID.String
	return l, nil
}

func (s *Store) UpdateBudgetLine(ctx context.Context, l costs.BudgetLine) (costs.BudgetLine, error) {
	l.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.project_budget_lines
		SET category = $2, cost_code = $3, description = $4, unit = $5,
		    quantity = $6, unit_cost = $7, contingency_pct = $8, updated_at = $9
		WHERE id = $1
	`, l.ID, l.Category, l.CostCode, l.Description, l.Unit, l.Quantity,
		l.UnitCost, l.ContingencyPct, l.UpdatedAt)
	if err != nil {
		return costs.BudgetLine{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return costs.BudgetLine{}, sql.ErrNoRows
	}
	return l, nil
}

func (s *Store) DeleteBudgetLine(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM landscape.project_budget_lines WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
