package comps

import (
	"context"
	"math"
	"testing"

	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

func testComp(name string, rent float64) marketcomp.Comp {
	return marketcomp.Comp{
		PropertyName: name,
		Market:       "Austin",
		Submarket:    "East",
		PropertyType: "multifamily",
		Units:        220,
		AvgUnitSF:    850,
		AskingRent:   rent,
		OccupancyPct: 94,
	}
}

func TestCompLifecycle(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, testComp("The Standard", 1650))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected id to be generated")
	}

	c.AskingRent = 1700
	updated, err := svc.Update(ctx, c.ID, c)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AskingRent != 1700 {
		t.Fatalf("update not applied")
	}

	list, err := svc.List(ctx, "Austin")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	noName := testComp("", 1650)
	if _, err := svc.Create(ctx, noName); err == nil {
		t.Fatalf("expected error for missing property name")
	}

	badOcc := testComp("The Standard", 1650)
	badOcc.OccupancyPct = 130
	if _, err := svc.Create(ctx, badOcc); err == nil {
		t.Fatalf("expected error for occupancy > 100")
	}
}

func TestSummarize(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	rents := []float64{1400, 1500, 1600, 1700, 1800}
	for i, rent := range rents {
		c := testComp("Comp", rent)
		c.PropertyName = string(rune('A' + i))
		if _, err := svc.Create(ctx, c); err != nil {
			t.Fatalf("create comp %d: %v", i, err)
		}
	}

	summary, err := svc.Summarize(ctx, "Austin")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Count != 5 {
		t.Fatalf("count = %d, want 5", summary.Count)
	}
	if math.Abs(summary.MeanRent-1600) > 1e-9 {
		t.Fatalf("mean = %v, want 1600", summary.MeanRent)
	}
	if math.Abs(summary.MedianRent-1600) > 1e-9 {
		t.Fatalf("median = %v, want 1600", summary.MedianRent)
	}
	if summary.P25Rent > summary.MedianRent || summary.MedianRent > summary.P75Rent {
		t.Fatalf("quantiles out of order: %+v", summary)
	}
	if math.Abs(summary.MeanOccupancy-94) > 1e-9 {
		t.Fatalf("occupancy = %v, want 94", summary.MeanOccupancy)
	}
	if summary.MeanRentPSF <= 0 {
		t.Fatalf("rent psf should be positive")
	}

	if _, err := svc.Summarize(ctx, ""); err == nil {
		t.Fatalf("expected error for empty market")
	}
}

func TestSummarizeEmptyMarket(t *testing.T) {
	summary := Summarize("Tulsa", nil)
	if summary.Count != 0 || summary.MeanRent != 0 {
		t.Fatalf("empty summary should be zero: %+v", summary)
	}
}
