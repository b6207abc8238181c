package benchmark

import (
	"math"
	"testing"
)

func TestValidateSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps []GrowthStep
		ok    bool
	}{
		{"empty", nil, false},
		{"single open-ended", []GrowthStep{{FromPeriod: 1, ThruPeriod: OpenEnded, AnnualRate: 3}}, true},
		{"single bounded", []GrowthStep{{FromPeriod: 1, ThruPeriod: "5", AnnualRate: 3}}, true},
		{"contiguous", []GrowthStep{
			{FromPeriod: 1, ThruPeriod: "3", AnnualRate: 5},
			{FromPeriod: 4, ThruPeriod: OpenEnded, AnnualRate: 3},
		}, true},
		{"starts late", []GrowthStep{{FromPeriod: 2, ThruPeriod: OpenEnded}}, false},
		{"gap", []GrowthStep{
			{FromPeriod: 1, ThruPeriod: "3"},
			{FromPeriod: 5, ThruPeriod: OpenEnded},
		}, false},
		{"overlap", []GrowthStep{
			{FromPeriod: 1, ThruPeriod: "3"},
			{FromPeriod: 3, ThruPeriod: OpenEnded},
		}, false},
		{"open-ended not last", []GrowthStep{
			{FromPeriod: 1, ThruPeriod: OpenEnded},
			{FromPeriod: 2, ThruPeriod: "5"},
		}, false},
		{"thru before from", []GrowthStep{{FromPeriod: 1, ThruPeriod: "0"}}, false},
		{"garbage thru", []GrowthStep{{FromPeriod: 1, ThruPeriod: "soon"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSteps(tt.steps)
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRateFor(t *testing.T) {
	set := GrowthRateSet{Steps: []GrowthStep{
		{FromPeriod: 1, ThruPeriod: "2", AnnualRate: 5},
		{FromPeriod: 3, ThruPeriod: "4", AnnualRate: 4},
		{FromPeriod: 5, ThruPeriod: OpenEnded, AnnualRate: 3},
	}}

	cases := map[int]float64{0: 0, 1: 5, 2: 5, 3: 4, 4: 4, 5: 3, 30: 3}
	for period, want := range cases {
		if got := set.RateFor(period); got != want {
			t.Fatalf("RateFor(%d) = %v, want %v", period, got, want)
		}
	}

	bounded := GrowthRateSet{Steps: []GrowthStep{{FromPeriod: 1, ThruPeriod: "3", AnnualRate: 2}}}
	if got := bounded.RateFor(4); got != 0 {
		t.Fatalf("rate past bounded steps = %v, want 0", got)
	}
}

func TestCompoundFactor(t *testing.T) {
	set := GrowthRateSet{Steps: []GrowthStep{
		{FromPeriod: 1, ThruPeriod: "2", AnnualRate: 10},
		{FromPeriod: 3, ThruPeriod: OpenEnded, AnnualRate: 0},
	}}

	if got := set.CompoundFactor(0); got != 1 {
		t.Fatalf("factor at period 0 = %v, want 1", got)
	}
	want := 1.1 * 1.1
	if got := set.CompoundFactor(3); math.Abs(got-want) > 1e-12 {
		t.Fatalf("factor = %v, want %v", got, want)
	}

	var empty GrowthRateSet
	if got := empty.CompoundFactor(10); got != 1 {
		t.Fatalf("empty set factor = %v, want 1", got)
	}
}
