package lease

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTermMonths(t *testing.T) {
	l := Lease{Commencement: date(2026, time.January, 1), Expiration: date(2031, time.January, 1)}
	if got := l.TermMonths(); got != 60 {
		t.Fatalf("term = %d, want 60", got)
	}

	inverted := Lease{Commencement: date(2026, time.January, 1), Expiration: date(2025, time.January, 1)}
	if got := inverted.TermMonths(); got != 0 {
		t.Fatalf("inverted term = %d, want 0", got)
	}
}

func TestSchedule(t *testing.T) {
	l := Lease{
		RentableSF:     1200,
		BaseRentPSF:    30, // $36,000/yr, $3,000/mo
		EscalationPct:  3,
		FreeRentMonths: 2,
		Commencement:   date(2026, time.January, 1),
		Expiration:     date(2028, time.January, 1),
	}

	sched := l.Schedule()
	if len(sched) != 24 {
		t.Fatalf("schedule length = %d, want 24", len(sched))
	}

	if !sched[0].Free || sched[0].Amount != 0 {
		t.Fatalf("month 1 should be free, got %+v", sched[0])
	}
	if sched[2].Free || math.Abs(sched[2].Amount-3000) > 1e-9 {
		t.Fatalf("month 3 = %+v, want 3000", sched[2])
	}
	// Year 2 escalates once.
	if got, want := sched[12].Amount, 3000*1.03; math.Abs(got-want) > 1e-9 {
		t.Fatalf("month 13 amount = %v, want %v", got, want)
	}
	if sched[0].Month != l.Commencement {
		t.Fatalf("first month = %v, want commencement", sched[0].Month)
	}
}

func TestScheduleDegenerate(t *testing.T) {
	if got := (Lease{}).Schedule(); got != nil {
		t.Fatalf("zero lease schedule = %v, want nil", got)
	}
	noSF := Lease{Commencement: date(2026, time.January, 1), Expiration: date(2027, time.January, 1)}
	if got := noSF.Schedule(); got != nil {
		t.Fatalf("no-SF schedule = %v, want nil", got)
	}
}

func TestAnnualRent(t *testing.T) {
	l := Lease{RentableSF: 1000, BaseRentPSF: 20, EscalationPct: 2}
	if got := l.AnnualRent(1); got != 20000 {
		t.Fatalf("year 1 = %v, want 20000", got)
	}
	if got, want := l.AnnualRent(3), 20000*1.02*1.02; math.Abs(got-want) > 1e-9 {
		t.Fatalf("year 3 = %v, want %v", got, want)
	}
	if got := l.AnnualRent(0); got != 0 {
		t.Fatalf("year 0 = %v, want 0", got)
	}
}
