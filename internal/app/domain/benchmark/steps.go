package benchmark

import (
	"fmt"
	"strconv"
)

// ValidateSteps checks that a step sequence covers periods contiguously.
// The first step must start at period 1, each later step must start at the
// previous thru period + 1, and only the final step may carry the open-ended
// sentinel.
func ValidateSteps(steps []GrowthStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least one growth step is required")
	}

	expectedFrom := 1
	for i, step := range steps {
		if step.FromPeriod != expectedFrom {
			return fmt.Errorf("step %d: from_period %d does not follow previous step (expected %d)", i+1, step.FromPeriod, expectedFrom)
		}

		if step.ThruPeriod == OpenEnded {
			if i != len(steps)-1 {
				return fmt.Errorf("step %d: open-ended thru_period only allowed on the final step", i+1)
			}
			return nil
		}

		thru, err := strconv.Atoi(step.ThruPeriod)
		if err != nil {
			return fmt.Errorf("step %d: thru_period %q is not a period number or %q", i+1, step.ThruPeriod, OpenEnded)
		}
		if thru < step.FromPeriod {
			return fmt.Errorf("step %d: thru_period %d precedes from_period %d", i+1, thru, step.FromPeriod)
		}
		expectedFrom = thru + 1
	}
	return nil
}

// RateFor returns the annual rate (percent) applying to a 1-based period.
// Periods past the last bounded step return 0 unless the final step is
// open-ended.
func (s GrowthRateSet) RateFor(period int) float64 {
	if period < 1 {
		return 0
	}
	for _, step := range s.Steps {
		if period < step.FromPeriod {
			continue
		}
		if step.ThruPeriod == OpenEnded {
			return step.AnnualRate
		}
		thru, err := strconv.Atoi(step.ThruPeriod)
		if err != nil {
			continue
		}
		if period <= thru {
			return step.AnnualRate
		}
	}
	return 0
}

// CompoundFactor returns the cumulative growth multiplier from period 1
// through the given period, compounding each period's rate.
func (s GrowthRateSet) CompoundFactor(period int) float64 {
	factor := 1.0
	for p := 1; p <= period; p++ {
		factor *= 1 + s.RateFor(p)/100
	}
	return factor
}
