package costs

import (
	"context"
	"math"
	"testing"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
	"github.com/landscape-hq/underwriter/internal/app/services/projects"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

type fixture struct {
	svc       *Service
	store     *memory.Store
	projectID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	projSvc := projects.New(store, nil)
	p, err := projSvc.Create(context.Background(), projects.CreateInput{Owner: "alice", Name: "Maple Court", Type: "multifamily"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return fixture{svc: New(store, store, store, nil), store: store, projectID: p.ID}
}

func testTemplate() costs.Template {
	return costs.Template{
		Name:        "Garden multifamily shell",
		ProjectType: "multifamily",
		Lines: []costs.TemplateLine{
			{LineOrder: 1, Category: "sitework", CostCode: "02-200", Description: "Mass grading", Unit: "acre", Quantity: 4, UnitCost: 12000, ContingencyPct: 10},
			{LineOrder: 2, Category: "shell", CostCode: "03-100", Description: "Structured slab", Unit: "sf", Quantity: 85000, UnitCost: 14, ContingencyPct: 5},
		},
	}
}

func TestCreateTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, testTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID == "" || len(tpl.Lines) != 2 {
		t.Fatalf("template not persisted: %+v", tpl)
	}

	want := 4*12000*1.10 + 85000*14*1.05
	if got := TemplateTotal(tpl); math.Abs(got-want) > 1e-6 {
		t.Fatalf("template total = %v, want %v", got, want)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noName := testTemplate()
	noName.Name = ""
	if _, err := f.svc.CreateTemplate(ctx, noName); err == nil {
		t.Fatalf("expected error for missing name")
	}

	badType := testTemplate()
	badType.ProjectType = "casino"
	if _, err := f.svc.CreateTemplate(ctx, badType); err == nil {
		t.Fatalf("expected error for unknown project type")
	}

	noLines := testTemplate()
	noLines.Lines = nil
	if _, err := f.svc.CreateTemplate(ctx, noLines); err == nil {
		t.Fatalf("expected error for empty line set")
	}

	badContingency := testTemplate()
	badContingency.Lines[0].ContingencyPct = 150
	if _, err := f.svc.CreateTemplate(ctx, badContingency); err == nil {
		t.Fatalf("expected error for contingency > 100")
	}

	danglingBenchmark := testTemplate()
	danglingBenchmark.Lines[0].BenchmarkID = "no-such-benchmark"
	if _, err := f.svc.CreateTemplate(ctx, danglingBenchmark); err == nil {
		t.Fatalf("expected error for missing benchmark reference")
	}
}

func TestTemplateBenchmarkLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uc, err := f.store.CreateUnitCost(ctx, benchmark.UnitCost{
		Category: "sitework", CostCode: "02-200", Description: "Mass grading",
		Unit: benchmark.UnitAcre, LowValue: 8000, TypicalValue: 12000, HighValue: 18000,
	})
	if err != nil {
		t.Fatalf("seed benchmark: %v", err)
	}

	tpl := testTemplate()
	tpl.Lines[0].BenchmarkID = uc.ID
	if _, err := f.svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create with benchmark link: %v", err)
	}
}

func TestReplaceLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, testTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replaced, err := f.svc.ReplaceLines(ctx, tpl.ID, []costs.TemplateLine{
		{LineOrder: 1, Category: "sitework", Description: "Clearing", Quantity: 1, UnitCost: 50000},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(replaced.Lines) != 1 || replaced.Lines[0].Description != "Clearing" {
		t.Fatalf("lines not replaced: %+v", replaced.Lines)
	}
}

func TestCloneToBudgetAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, testTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lines, err := f.svc.CloneToBudget(ctx, tpl.ID, f.projectID)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("cloned %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l.ProjectID != f.projectID || l.TemplateID != tpl.ID {
			t.Fatalf("budget line not linked: %+v", l)
		}
	}

	// Re-cloning replaces, not duplicates.
	if _, err := f.svc.CloneToBudget(ctx, tpl.ID, f.projectID); err != nil {
		t.Fatalf("reclone: %v", err)
	}
	budget, err := f.svc.ListBudget(ctx, f.projectID)
	if err != nil {
		t.Fatalf("list budget: %v", err)
	}
	if len(budget) != 2 {
		t.Fatalf("budget has %d lines after reclone, want 2", len(budget))
	}

	summary, err := f.svc.BudgetSummary(ctx, f.projectID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := 4*12000*1.10 + 85000*14*1.05
	if math.Abs(summary.Total-want) > 1e-6 {
		t.Fatalf("summary total = %v, want %v", summary.Total, want)
	}
	if len(summary.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(summary.Categories))
	}
	// Sorted by category name.
	if summary.Categories[0].Category != "shell" || summary.Categories[1].Category != "sitework" {
		t.Fatalf("categories not sorted: %+v", summary.Categories)
	}
}

func TestUpdateBudgetLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, testTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lines, err := f.svc.CloneToBudget(ctx, tpl.ID, f.projectID)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}

	l := lines[0]
	l.UnitCost = 15000
	updated, err := f.svc.UpdateBudgetLine(ctx, l)
	if err != nil {
		t.Fatalf("update line: %v", err)
	}
	if updated.UnitCost != 15000 {
		t.Fatalf("line not updated: %+v", updated)
	}

	l.ContingencyPct = -1
	if _, err := f.svc.UpdateBudgetLine(ctx, l); err == nil {
		t.Fatalf("expected error for negative contingency")
	}

	if err := f.svc.DeleteBudgetLine(ctx, updated.ID); err != nil {
		t.Fatalf("delete line: %v", err)
	}
}

func TestCloneToDeletedProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, testTemplate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.store.SoftDeleteProject(ctx, f.projectID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.svc.CloneToBudget(ctx, tpl.ID, f.projectID); err == nil {
		t.Fatalf("expected clone into deleted project to fail")
	}
}
