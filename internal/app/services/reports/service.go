package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/domain/report"
	"github.com/landscape-hq/underwriter/internal/app/metrics"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service builds financial reports for a project from its leases, expense
// entries, budget, and the growth-rate library.
type Service struct {
	projects   storage.ProjectStore
	leases     storage.LeaseStore
	opexStore  storage.OpexStore
	benchmarks storage.BenchmarkStore
	costs      storage.CostStore
	cache      Cache
	log        *logging.Logger
}

// New creates a configured report service. A nil cache disables caching.
func New(projects storage.ProjectStore, leaseStore storage.LeaseStore, opexStore storage.OpexStore, benchmarks storage.BenchmarkStore, costStore storage.CostStore, cache Cache, log *logging.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = logging.NewDefault("reports")
	}
	return &Service{
		projects:   projects,
		leases:     leaseStore,
		opexStore:  opexStore,
		benchmarks: benchmarks,
		costs:      costStore,
		cache:      cache,
		log:        log,
	}
}

// Invalidate drops all cached reports for a project. Write paths that
// change projection inputs call this.
func (s *Service) Invalidate(ctx context.Context, projectID string) {
	s.cache.Invalidate(ctx, projectID)
}

func validateAssumptions(a report.Assumptions) error {
	if a.TotalRentableSF <= 0 {
		return fmt.Errorf("total_rentable_sf must be positive")
	}
	if a.MarketRentPSF < 0 {
		return fmt.Errorf("market_rent_psf cannot be negative")
	}
	if a.VacancyPct < 0 || a.VacancyPct > 100 {
		return fmt.Errorf("vacancy_pct must be between 0 and 100")
	}
	if a.ExitCapRate < 0 || a.ExitCapRate > 100 {
		return fmt.Errorf("exit_cap_rate must be between 0 and 100")
	}
	if a.SellingCostPct < 0 || a.SellingCostPct > 100 {
		return fmt.Errorf("selling_cost_pct must be between 0 and 100")
	}
	if a.DiscountRate < 0 || a.DiscountRate > 100 {
		return fmt.Errorf("discount_rate must be between 0 and 100")
	}
	return nil
}

func assumptionsKey(name string, a report.Assumptions) string {
	payload, _ := json.Marshal(a)
	sum := sha256.Sum256(payload)
	return name + ":" + hex.EncodeToString(sum[:8])
}

func (s *Service) growthSet(ctx context.Context, id string) (benchmark.GrowthRateSet, error) {
	if id == "" {
		return benchmark.GrowthRateSet{}, nil
	}
	return s.benchmarks.GetGrowthRateSet(ctx, id)
}

// CashFlow builds the annual projection over the project's hold period.
// Year 0 carries the capital budget; years 1..hold carry operations.
func (s *Service) CashFlow(ctx context.Context, projectID string, a report.Assumptions) (report.CashFlow, error) {
	if err := validateAssumptions(a); err != nil {
		return report.CashFlow{}, err
	}
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return report.CashFlow{}, err
	}

	key := assumptionsKey("cashflow", a)
	if payload, ok := s.cache.Get(ctx, projectID, key); ok {
		var cached report.CashFlow
		if err := json.Unmarshal(payload, &cached); err == nil {
			metrics.RecordReportCache(true)
			return cached, nil
		}
	}
	metrics.RecordReportCache(false)

	cf, err := s.buildCashFlow(ctx, p, a)
	if err != nil {
		return report.CashFlow{}, err
	}

	if payload, err := json.Marshal(cf); err == nil {
		s.cache.Set(ctx, projectID, key, payload)
	}
	return cf, nil
}

func (s *Service) buildCashFlow(ctx context.Context, p project.Project, a report.Assumptions) (report.CashFlow, error) {
	rentGrowth, err := s.growthSet(ctx, a.RentGrowthSetID)
	if err != nil {
		return report.CashFlow{}, fmt.Errorf("rent growth set: %w", err)
	}
	expenseGrowth, err := s.growthSet(ctx, a.ExpenseGrowthSetID)
	if err != nil {
		return report.CashFlow{}, fmt.Errorf("expense growth set: %w", err)
	}

	leaseRows, err := s.leases.ListLeases(ctx, p.ID)
	if err != nil {
		return report.CashFlow{}, err
	}
	entries, err := s.opexStore.ListOpexEntries(ctx, p.ID)
	if err != nil {
		return report.CashFlow{}, err
	}
	budgetLines, err := s.costs.ListBudgetLines(ctx, p.ID)
	if err != nil {
		return report.CashFlow{}, err
	}

	var budgetTotal float64
	for _, l := range budgetLines {
		budgetTotal += l.Total()
	}

	hold := p.HoldPeriodYears
	leaseRevenue, leasedSF := leaseRevenueByYear(p.AnalysisStart, hold, leaseRows)

	// size-driven expenses in year-1 dollars, plus the pct-of-EGI rate
	var opexBase, pctEGI float64
	for _, e := range entries {
		switch e.Basis {
		case opex.BasisPerUnit:
			opexBase += e.Amount * float64(a.Units)
		case opex.BasisPerSF:
			opexBase += e.Amount * a.TotalRentableSF
		case opex.BasisPctEGI:
			pctEGI += e.Amount
		default:
			opexBase += e.Amount
		}
	}

	cf := report.CashFlow{
		ProjectID:   p.ID,
		HoldYears:   hold,
		BudgetTotal: budgetTotal,
		Years:       make([]report.CashFlowYear, 0, hold+1),
	}

	cumulative := -budgetTotal
	cf.Years = append(cf.Years, report.CashFlowYear{
		Year:         0,
		CapitalCosts: budgetTotal,
		NetCashFlow:  -budgetTotal,
		Cumulative:   cumulative,
	})

	for y := 1; y <= hold; y++ {
		rentFactor := rentGrowth.CompoundFactor(y - 1)
		expenseFactor := expenseGrowth.CompoundFactor(y - 1)

		vacantSF := a.TotalRentableSF - leasedSF[y]
		if vacantSF < 0 {
			vacantSF = 0
		}
		marketRevenue := vacantSF * a.MarketRentPSF * rentFactor
		gross := leaseRevenue[y] + marketRevenue
		vacancyLoss := gross * a.VacancyPct / 100
		egi := gross - vacancyLoss
		operating := opexBase*expenseFactor + pctEGI/100*egi
		noi := egi - operating

		cumulative += noi
		cf.Years = append(cf.Years, report.CashFlowYear{
			Year:                 y,
			LeaseRevenue:         leaseRevenue[y],
			MarketRevenue:        marketRevenue,
			GrossRevenue:         gross,
			VacancyLoss:          vacancyLoss,
			EffectiveGrossIncome: egi,
			OperatingExpenses:    operating,
			NOI:                  noi,
			NetCashFlow:          noi,
			Cumulative:           cumulative,
		})
	}
	return cf, nil
}

// leaseRevenueByYear maps each lease's monthly schedule onto 1-based
// projection years from the analysis start, returning revenue and the
// month-weighted leased SF per year.
func leaseRevenueByYear(start time.Time, hold int, leaseRows []lease.Lease) (map[int]float64, map[int]float64) {
	revenue := make(map[int]float64, hold)
	leasedSF := make(map[int]float64, hold)

	for _, l := range leaseRows {
		if l.Status != lease.StatusActive {
			continue
		}
		end := l.Expiration
		if l.TerminationDate != nil && l.TerminationDate.Before(end) {
			end = *l.TerminationDate
		}
		for _, m := range l.Schedule() {
			if m.Month.Before(start) || !m.Month.Before(end) {
				continue
			}
			year := monthsBetween(start, m.Month)/12 + 1
			if year < 1 || year > hold {
				continue
			}
			revenue[year] += m.Amount
			leasedSF[year] += l.RentableSF / 12
		}
	}
	return revenue, leasedSF
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// Returns computes IRR, NPV, equity multiple, and cash-on-cash from the
// projection and an exit sale at the terminal cap rate.
func (s *Service) Returns(ctx context.Context, projectID string, a report.Assumptions) (report.Returns, error) {
	if a.ExitCapRate <= 0 {
		return report.Returns{}, fmt.Errorf("exit_cap_rate must be positive")
	}

	key := assumptionsKey("returns", a)
	if payload, ok := s.cache.Get(ctx, projectID, key); ok {
		var cached report.Returns
		if err := json.Unmarshal(payload, &cached); err == nil {
			metrics.RecordReportCache(true)
			return cached, nil
		}
	}
	metrics.RecordReportCache(false)

	cf, err := s.CashFlow(ctx, projectID, a)
	if err != nil {
		return report.Returns{}, err
	}

	exitNOI := cf.Years[len(cf.Years)-1].NOI
	terminal := exitNOI / (a.ExitCapRate / 100) * (1 - a.SellingCostPct/100)

	flows := make([]float64, 0, len(cf.Years))
	for _, y := range cf.Years {
		flows = append(flows, y.NetCashFlow)
	}
	flows[len(flows)-1] += terminal

	out := report.Returns{
		ProjectID:      projectID,
		Flows:          flows,
		TerminalValue:  terminal,
		NPV:            NPV(a.DiscountRate/100, flows),
		EquityMultiple: EquityMultiple(flows),
	}
	if irr, err := IRR(flows); err == nil {
		pct := irr * 100
		out.IRRPct = &pct
	}
	if cf.BudgetTotal > 0 {
		out.CashOnCash = make([]float64, 0, len(cf.Years)-1)
		for _, y := range cf.Years[1:] {
			out.CashOnCash = append(out.CashOnCash, y.NetCashFlow/cf.BudgetTotal*100)
		}
	}

	if payload, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, projectID, key, payload)
	}
	return out, nil
}

// Valuation concludes value by direct capitalization of stabilized NOI and
// by discounting the cash flows.
func (s *Service) Valuation(ctx context.Context, projectID string, a report.Assumptions) (report.Valuation, error) {
	if a.ExitCapRate <= 0 {
		return report.Valuation{}, fmt.Errorf("exit_cap_rate must be positive")
	}

	cf, err := s.CashFlow(ctx, projectID, a)
	if err != nil {
		return report.Valuation{}, err
	}
	ret, err := s.Returns(ctx, projectID, a)
	if err != nil {
		return report.Valuation{}, err
	}

	// stabilized NOI is the first operating year with positive NOI, falling
	// back to year 1 when the projection never turns positive
	var stabilized float64
	if len(cf.Years) > 1 {
		stabilized = cf.Years[1].NOI
		for _, y := range cf.Years[1:] {
			if y.NOI > 0 {
				stabilized = y.NOI
				break
			}
		}
	}

	operatingFlows := ret.Flows[1:]
	dcf := NPV(a.DiscountRate/100, append([]float64{0}, operatingFlows...))

	return report.Valuation{
		ProjectID:      projectID,
		StabilizedNOI:  stabilized,
		ExitCapRate:    a.ExitCapRate,
		DirectCapValue: stabilized / (a.ExitCapRate / 100),
		DCFValue:       dcf,
	}, nil
}
