package reports

import (
	"math"
	"testing"
)

func TestNPV(t *testing.T) {
	// 100 received in one year at 10% is worth 90.909... today.
	got := NPV(0.10, []float64{0, 100})
	if math.Abs(got-100/1.1) > 1e-9 {
		t.Fatalf("NPV = %v, want %v", got, 100/1.1)
	}

	// Zero rate sums the flows.
	got = NPV(0, []float64{-100, 40, 40, 40})
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("NPV at 0%% = %v, want 20", got)
	}

	// Time zero is not discounted.
	if got := NPV(0.5, []float64{-100}); got != -100 {
		t.Fatalf("NPV of single flow = %v, want -100", got)
	}
}

func TestIRR(t *testing.T) {
	// -1000 now, 1100 in a year: exactly 10%.
	irr, err := IRR([]float64{-1000, 1100})
	if err != nil {
		t.Fatalf("irr: %v", err)
	}
	if math.Abs(irr-0.10) > 1e-6 {
		t.Fatalf("irr = %v, want 0.10", irr)
	}

	// A multi-year series: NPV at the solved rate must be ~0.
	flows := []float64{-5000, 1200, 1400, 1600, 1800, 2000}
	irr, err = IRR(flows)
	if err != nil {
		t.Fatalf("irr: %v", err)
	}
	if v := NPV(irr, flows); math.Abs(v) > 1e-6 {
		t.Fatalf("NPV at irr = %v, want ~0", v)
	}
	if irr <= 0 || irr >= 1 {
		t.Fatalf("irr = %v out of plausible range", irr)
	}
}

func TestIRRNoSignChange(t *testing.T) {
	if _, err := IRR([]float64{100, 200, 300}); err == nil {
		t.Fatal("expected error for all-positive flows")
	}
	if _, err := IRR([]float64{-100, -200}); err == nil {
		t.Fatal("expected error for all-negative flows")
	}
	if _, err := IRR([]float64{-100}); err == nil {
		t.Fatal("expected error for a series with one entry")
	}
}

func TestIRRDeepLoss(t *testing.T) {
	// The project returns less than invested; the rate is negative but
	// still above total loss.
	irr, err := IRR([]float64{-1000, 300, 300})
	if err != nil {
		t.Fatalf("irr: %v", err)
	}
	if irr >= 0 || irr <= -1 {
		t.Fatalf("irr = %v, want negative and above -1", irr)
	}
	if v := NPV(irr, []float64{-1000, 300, 300}); math.Abs(v) > 1e-6 {
		t.Fatalf("NPV at irr = %v, want ~0", v)
	}
}

func TestEquityMultiple(t *testing.T) {
	if got := EquityMultiple([]float64{-1000, 500, 1500}); math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("equity multiple = %v, want 2.0", got)
	}
	if got := EquityMultiple([]float64{0, 100}); got != 0 {
		t.Fatalf("equity multiple with no invested capital = %v, want 0", got)
	}
}
