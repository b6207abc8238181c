package costs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service manages cost templates and project budgets cloned from them.
type Service struct {
	projects   storage.ProjectStore
	benchmarks storage.BenchmarkStore
	store      storage.CostStore
	log        *logging.Logger
}

// New creates a configured cost service.
func New(projects storage.ProjectStore, benchmarks storage.BenchmarkStore, store storage.CostStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("costs")
	}
	return &Service{projects: projects, benchmarks: benchmarks, store: store, log: log}
}

func (s *Service) validateLines(ctx context.Context, lines []costs.TemplateLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for i, l := range lines {
		if strings.TrimSpace(l.Category) == "" {
			return fmt.Errorf("line %d: category is required", i+1)
		}
		if strings.TrimSpace(l.Description) == "" {
			return fmt.Errorf("line %d: description is required", i+1)
		}
		if l.Quantity < 0 {
			return fmt.Errorf("line %d: quantity cannot be negative", i+1)
		}
		if l.UnitCost < 0 {
			return fmt.Errorf("line %d: unit_cost cannot be negative", i+1)
		}
		if l.ContingencyPct < 0 || l.ContingencyPct > 100 {
			return fmt.Errorf("line %d: contingency_pct must be between 0 and 100", i+1)
		}
		if l.BenchmarkID != "" && s.benchmarks != nil {
			if _, err := s.benchmarks.GetUnitCost(ctx, l.BenchmarkID); err != nil {
				return fmt.Errorf("line %d: benchmark validation failed: %w", i+1, err)
			}
		}
	}
	return nil
}

// CreateTemplate writes a new cost template with its lines.
func (s *Service) CreateTemplate(ctx context.Context, t costs.Template) (costs.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.ProjectType = strings.TrimSpace(strings.ToLower(t.ProjectType))
	if t.Name == "" {
		return costs.Template{}, fmt.Errorf("name is required")
	}
	if !project.ValidType(project.Type(t.ProjectType)) {
		return costs.Template{}, fmt.Errorf("unknown project type %q", t.ProjectType)
	}
	if err := s.validateLines(ctx, t.Lines); err != nil {
		return costs.Template{}, err
	}

	t, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return costs.Template{}, err
	}
	s.log.WithField("template_id", t.ID).
		WithField("project_type", t.ProjectType).
		WithField("lines", len(t.Lines)).
		Info("cost template created")
	return t, nil
}

// ReplaceLines swaps a template's line set atomically.
func (s *Service) ReplaceLines(ctx context.Context, templateID string, lines []costs.TemplateLine) (costs.Template, error) {
	if err := s.validateLines(ctx, lines); err != nil {
		return costs.Template{}, err
	}
	t, err := s.store.ReplaceTemplateLines(ctx, templateID, lines)
	if err != nil {
		return costs.Template{}, err
	}
	s.log.WithField("template_id", t.ID).
		WithField("lines", len(t.Lines)).
		Info("cost template lines replaced")
	return t, nil
}

// GetTemplate fetches a template and its lines.
func (s *Service) GetTemplate(ctx context.Context, id string) (costs.Template, error) {
	return s.store.GetTemplate(ctx, id)
}

// ListTemplates returns templates, optionally filtered by project type.
func (s *Service) ListTemplates(ctx context.Context, projectType string) ([]costs.Template, error) {
	return s.store.ListTemplates(ctx, strings.TrimSpace(strings.ToLower(projectType)))
}

// DeleteTemplate removes a template and its lines.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return s.store.DeleteTemplate(ctx, id)
}

// TemplateTotal sums a template's line totals with contingency.
func TemplateTotal(t costs.Template) float64 {
	var total float64
	for _, l := range t.Lines {
		total += l.Total()
	}
	return total
}

// CloneToBudget copies a template's lines into a project budget. Re-cloning
// the same template replaces lines from the earlier clone.
func (s *Service) CloneToBudget(ctx context.Context, templateID, projectID string) ([]costs.BudgetLine, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Deleted() {
		return nil, fmt.Errorf("project %s is deleted", projectID)
	}

	lines, err := s.store.CloneTemplateToBudget(ctx, templateID, p.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithField("template_id", templateID).
		WithField("project_id", p.ID).
		WithField("lines", len(lines)).
		Info("template cloned to project budget")
	return lines, nil
}

// ListBudget returns a project's budget lines.
func (s *Service) ListBudget(ctx context.Context, projectID string) ([]costs.BudgetLine, error) {
	return s.store.ListBudgetLines(ctx, projectID)
}

// UpdateBudgetLine edits one budget line in place.
func (s *Service) UpdateBudgetLine(ctx context.Context, l costs.BudgetLine) (costs.BudgetLine, error) {
	if strings.TrimSpace(l.Category) == "" {
		return costs.BudgetLine{}, fmt.Errorf("category is required")
	}
	if l.Quantity < 0 || l.UnitCost < 0 {
		return costs.BudgetLine{}, fmt.Errorf("quantity and unit_cost cannot be negative")
	}
	if l.ContingencyPct < 0 || l.ContingencyPct > 100 {
		return costs.BudgetLine{}, fmt.Errorf("contingency_pct must be between 0 and 100")
	}
	return s.store.UpdateBudgetLine(ctx, l)
}

// GetBudgetLine returns one budget line by id.
func (s *Service) GetBudgetLine(ctx context.Context, id string) (costs.BudgetLine, error) {
	return s.store.GetBudgetLine(ctx, id)
}

// DeleteBudgetLine removes one budget line.
func (s *Service) DeleteBudgetLine(ctx context.Context, id string) error {
	return s.store.DeleteBudgetLine(ctx, id)
}

// BudgetSummary rolls the project budget up by category.
func (s *Service) BudgetSummary(ctx context.Context, projectID string) (costs.BudgetSummary, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return costs.BudgetSummary{}, err
	}
	lines, err := s.store.ListBudgetLines(ctx, projectID)
	if err != nil {
		return costs.BudgetSummary{}, err
	}

	byCategory := map[string]float64{}
	summary := costs.BudgetSummary{ProjectID: projectID}
	for _, l := range lines {
		total := l.Total()
		byCategory[l.Category] += total
		summary.Total += total
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		summary.Categories = append(summary.Categories, costs.CategoryTotal{Category: c, Total: byCategory[c]})
	}
	return summary, nil
}
