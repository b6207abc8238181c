package reports

import (
	"fmt"
	"math"
)

// NPV discounts a cash-flow series at the given annual rate. flows[0] is
// time zero and is not discounted.
func NPV(rate float64, flows []float64) float64 {
	var pv float64
	for t, cf := range flows {
		pv += cf / math.Pow(1+rate, float64(t))
	}
	return pv
}

func npvDerivative(rate float64, flows []float64) float64 {
	var d float64
	for t := 1; t < len(flows); t++ {
		d -= float64(t) * flows[t] / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// IRR solves for the rate making NPV zero, by damped Newton iteration with
// a bisection fallback when Newton diverges. The series needs at least one
// sign change to have a root.
func IRR(flows []float64) (float64, error) {
	if len(flows) < 2 {
		return 0, fmt.Errorf("cash flow series too short")
	}
	hasNegative, hasPositive := false, false
	for _, cf := range flows {
		if cf < 0 {
			hasNegative = true
		}
		if cf > 0 {
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return 0, fmt.Errorf("cash flows never change sign")
	}

	const (
		tolerance = 1e-9
		maxIter   = 100
	)

	rate := 0.1
	for i := 0; i < maxIter; i++ {
		v := NPV(rate, flows)
		if math.Abs(v) < tolerance {
			return rate, nil
		}
		d := npvDerivative(rate, flows)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			break
		}
		step := v / d
		// damp large steps so the iterate stays above total loss
		for rate-step <= -1 || math.Abs(step) > 1 {
			step /= 2
		}
		next := rate - step
		if math.Abs(next-rate) < tolerance {
			return next, nil
		}
		rate = next
	}

	return irrBisect(flows)
}

func irrBisect(flows []float64) (float64, error) {
	lo, hi := -0.9999, 10.0
	vLo := NPV(lo, flows)
	vHi := NPV(hi, flows)
	if vLo*vHi > 0 {
		return 0, fmt.Errorf("irr does not converge")
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		v := NPV(mid, flows)
		if math.Abs(v) < 1e-9 || hi-lo < 1e-10 {
			return mid, nil
		}
		if v*vLo < 0 {
			hi = mid
		} else {
			lo = mid
			vLo = v
		}
	}
	return (lo + hi) / 2, nil
}

// EquityMultiple is total distributions over total invested capital.
func EquityMultiple(flows []float64) float64 {
	var invested, returned float64
	for _, cf := range flows {
		if cf < 0 {
			invested -= cf
		} else {
			returned += cf
		}
	}
	if invested == 0 {
		return 0
	}
	return returned / invested
}
