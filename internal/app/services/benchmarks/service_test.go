package benchmarks

import (
	"context"
	"testing"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

func testUnitCost() benchmark.UnitCost {
	return benchmark.UnitCost{
		Category:      "sitework",
		CostCode:      "02-200",
		Description:   "Mass grading",
		Unit:          benchmark.UnitAcre,
		LowValue:      8000,
		TypicalValue:  12000,
		HighValue:     18000,
		Source:        "2025 bid history",
		EffectiveYear: 2025,
	}
}

func TestUnitCostLifecycle(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	uc, err := svc.CreateUnitCost(ctx, testUnitCost())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if uc.ID == "" {
		t.Fatalf("expected id to be generated")
	}

	uc.TypicalValue = 13000
	updated, err := svc.UpdateUnitCost(ctx, uc.ID, uc)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TypicalValue != 13000 {
		t.Fatalf("update not applied")
	}

	list, err := svc.ListUnitCosts(ctx, "sitework", "")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	if err := svc.DeleteUnitCost(ctx, uc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetUnitCost(ctx, uc.ID); err == nil {
		t.Fatalf("expected get after delete to fail")
	}
}

func TestUnitCostValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	inverted := testUnitCost()
	inverted.LowValue = 20000
	if _, err := svc.CreateUnitCost(ctx, inverted); err == nil {
		t.Fatalf("expected error for low > typical")
	}

	badUnit := testUnitCost()
	badUnit.Unit = "furlong"
	if _, err := svc.CreateUnitCost(ctx, badUnit); err == nil {
		t.Fatalf("expected error for unknown unit")
	}

	noCode := testUnitCost()
	noCode.CostCode = ""
	if _, err := svc.CreateUnitCost(ctx, noCode); err == nil {
		t.Fatalf("expected error for missing cost code")
	}
}

func TestSaveGrowthRateSet(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	set, err := svc.SaveGrowthRateSet(ctx, benchmark.GrowthRateSet{
		Name: "Base rent growth",
		Kind: benchmark.GrowthRent,
		Steps: []benchmark.GrowthStep{
			{FromPeriod: 1, ThruPeriod: "2", AnnualRate: 5},
			{FromPeriod: 3, ThruPeriod: benchmark.OpenEnded, AnnualRate: 3},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if set.ID == "" || len(set.Steps) != 2 {
		t.Fatalf("set not persisted: %+v", set)
	}

	// Replacing steps through the same ID.
	set.Steps = []benchmark.GrowthStep{{FromPeriod: 1, ThruPeriod: benchmark.OpenEnded, AnnualRate: 2}}
	replaced, err := svc.SaveGrowthRateSet(ctx, set)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(replaced.Steps) != 1 || replaced.Steps[0].AnnualRate != 2 {
		t.Fatalf("steps not replaced: %+v", replaced.Steps)
	}

	list, err := svc.ListGrowthRateSets(ctx, benchmark.GrowthRent)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
}

func TestSaveGrowthRateSetValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	gapped := benchmark.GrowthRateSet{
		Name: "Broken",
		Kind: benchmark.GrowthExpense,
		Steps: []benchmark.GrowthStep{
			{FromPeriod: 1, ThruPeriod: "2", AnnualRate: 3},
			{FromPeriod: 4, ThruPeriod: benchmark.OpenEnded, AnnualRate: 3},
		},
	}
	if _, err := svc.SaveGrowthRateSet(ctx, gapped); err == nil {
		t.Fatalf("expected error for gapped steps")
	}

	badKind := benchmark.GrowthRateSet{
		Name:  "Bad kind",
		Kind:  "weather",
		Steps: []benchmark.GrowthStep{{FromPeriod: 1, ThruPeriod: benchmark.OpenEnded}},
	}
	if _, err := svc.SaveGrowthRateSet(ctx, badKind); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestSuggestionReview(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	sg, err := svc.CreateSuggestion(ctx, benchmark.Suggestion{
		Category:     "sitework",
		CostCode:     "02-300",
		Description:  "Curb and gutter",
		Unit:         benchmark.UnitSF,
		TypicalValue: 34,
		Confidence:   0.82,
	})
	if err != nil {
		t.Fatalf("create suggestion: %v", err)
	}
	if sg.Status != benchmark.SuggestionPending {
		t.Fatalf("status = %q, want pending", sg.Status)
	}

	approved, uc, err := svc.ApproveSuggestion(ctx, sg.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != benchmark.SuggestionApproved {
		t.Fatalf("status = %q, want approved", approved.Status)
	}
	if uc.ID == "" || approved.BenchmarkID != uc.ID {
		t.Fatalf("approval did not create library entry: %+v", approved)
	}
	if uc.TypicalValue != 34 || uc.CostCode != "02-300" {
		t.Fatalf("library entry fields wrong: %+v", uc)
	}

	// Approving twice fails.
	if _, _, err := svc.ApproveSuggestion(ctx, sg.ID); err == nil {
		t.Fatalf("expected second approval to fail")
	}
}

func TestSuggestionReject(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	sg, err := svc.CreateSuggestion(ctx, benchmark.Suggestion{
		Category:     "shell",
		CostCode:     "03-100",
		Description:  "Structured slab",
		Unit:         benchmark.UnitSF,
		TypicalValue: 19,
		Confidence:   0.4,
	})
	if err != nil {
		t.Fatalf("create suggestion: %v", err)
	}

	rejected, err := svc.RejectSuggestion(ctx, sg.ID, "value out of market range")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != benchmark.SuggestionRejected || rejected.RejectionReason == "" {
		t.Fatalf("reject not applied: %+v", rejected)
	}

	pending, err := svc.ListSuggestions(ctx, benchmark.SuggestionPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("rejected suggestion still pending")
	}
}

func TestCreateSuggestionValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	overConfident := benchmark.Suggestion{
		Category:     "shell",
		CostCode:     "03-100",
		Description:  "Slab",
		Unit:         benchmark.UnitSF,
		TypicalValue: 19,
		Confidence:   1.4,
	}
	if _, err := svc.CreateSuggestion(ctx, overConfident); err == nil {
		t.Fatalf("expected error for confidence > 1")
	}
}
