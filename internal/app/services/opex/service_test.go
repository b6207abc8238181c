package opex

import (
	"context"
	"math"
	"testing"

	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/services/projects"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

func newFixture(t *testing.T) (*Service, string) {
	t.Helper()
	store := memory.New()
	projSvc := projects.New(store, nil)
	p, err := projSvc.Create(context.Background(), projects.CreateInput{Owner: "alice", Name: "Maple Court", Type: "multifamily"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return New(store, store, nil), p.ID
}

func TestUpsert(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	e, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "trash", Amount: 220})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if e.Basis != opex.BasisPerUnit {
		t.Fatalf("basis = %q, want taxonomy default per_unit", e.Basis)
	}

	// Second write for the same field replaces, not appends.
	if _, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "trash", Amount: 250}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	entries, err := svc.List(ctx, projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 250 {
		t.Fatalf("expected single replaced entry, got %+v", entries)
	}
}

func TestUpsertValidation(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "utilities", Amount: 100}); err == nil {
		t.Fatalf("expected error writing to rollup field")
	}
	if _, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "submarine_fuel", Amount: 100}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "trash", Amount: -5}); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	if _, err := svc.Upsert(ctx, projectID, opex.Entry{FieldKey: "trash", Amount: 5, Basis: "per_tenant"}); err == nil {
		t.Fatalf("expected error for unknown basis")
	}
	if _, err := svc.Upsert(ctx, "missing", opex.Entry{FieldKey: "trash", Amount: 5}); err == nil {
		t.Fatalf("expected error for unknown project")
	}
}

func TestAnnualize(t *testing.T) {
	in := SummaryInput{Units: 100, RentableSF: 90000, EGI: 1_500_000}

	cases := []struct {
		entry opex.Entry
		want  float64
	}{
		{opex.Entry{Basis: opex.BasisPerUnit, Amount: 250}, 25000},
		{opex.Entry{Basis: opex.BasisPerSF, Amount: 0.5}, 45000},
		{opex.Entry{Basis: opex.BasisPctEGI, Amount: 3}, 45000},
		{opex.Entry{Basis: opex.BasisFixed, Amount: 12000}, 12000},
	}
	for _, tt := range cases {
		if got := Annualize(tt.entry, in); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("annualize %s %v = %v, want %v", tt.entry.Basis, tt.entry.Amount, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	entries := []opex.Entry{
		{FieldKey: "real_estate_taxes", Amount: 80000, Basis: opex.BasisFixed},
		{FieldKey: "trash", Amount: 200, Basis: opex.BasisPerUnit},     // 100 units -> 20,000
		{FieldKey: "management_fee", Amount: 3, Basis: opex.BasisPctEGI}, // 3% of 1M -> 30,000
	}
	for _, e := range entries {
		if _, err := svc.Upsert(ctx, projectID, e); err != nil {
			t.Fatalf("upsert %s: %v", e.FieldKey, err)
		}
	}

	summary, err := svc.Summary(ctx, projectID, SummaryInput{Units: 100, RentableSF: 85000, EGI: 1_000_000})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if math.Abs(summary.Total-130000) > 1e-9 {
		t.Fatalf("total = %v, want 130000", summary.Total)
	}
	if math.Abs(summary.TotalPerUnit-1300) > 1e-9 {
		t.Fatalf("per unit = %v, want 1300", summary.TotalPerUnit)
	}
	if summary.TotalPerSF <= 0 {
		t.Fatalf("per SF should be positive")
	}

	var taxes float64
	for _, n := range summary.Tree {
		if n.Key == "taxes_insurance" {
			taxes = n.Amount
		}
	}
	if math.Abs(taxes-80000) > 1e-9 {
		t.Fatalf("taxes rollup = %v, want 80000", taxes)
	}
}
