package reports

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/domain/report"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

// recordingCache counts hits and sets so tests can observe cache traffic.
type recordingCache struct {
	entries map[string][]byte
	hits    int
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, projectID, key string) ([]byte, bool) {
	payload, ok := c.entries[projectID+"|"+key]
	if ok {
		c.hits++
	}
	return payload, ok
}

func (c *recordingCache) Set(_ context.Context, projectID, key string, payload []byte) {
	c.sets++
	c.entries[projectID+"|"+key] = payload
}

func (c *recordingCache) Invalidate(_ context.Context, projectID string) {
	for k := range c.entries {
		if strings.HasPrefix(k, projectID+"|") {
			delete(c.entries, k)
		}
	}
}

type fixture struct {
	svc       *Service
	store     *memory.Store
	cache     *recordingCache
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	cache := newRecordingCache()

	p, err := store.CreateProject(ctx, project.Project{
		Owner:           "analyst@example.com",
		Name:            "Maple Court",
		Type:            project.TypeMultifamily,
		Status:          project.StatusActive,
		AnalysisStart:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		HoldPeriodYears: 5,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// One active lease covering the whole hold: 10,000 SF at $20/SF/yr.
	if _, err := store.CreateLease(ctx, lease.Lease{
		ProjectID:    p.ID,
		TenantName:   "Acme Dental",
		RentableSF:   10000,
		Commencement: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Expiration:   time.Date(2032, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseRentPSF:  20,
		RecoveryType: lease.RecoveryNNN,
		Status:       lease.StatusActive,
	}); err != nil {
		t.Fatalf("create lease: %v", err)
	}

	if _, err := store.UpsertOpexEntry(ctx, opex.Entry{
		ProjectID: p.ID, FieldKey: "taxes", Amount: 50000, Basis: opex.BasisFixed,
	}); err != nil {
		t.Fatalf("upsert opex: %v", err)
	}
	if _, err := store.UpsertOpexEntry(ctx, opex.Entry{
		ProjectID: p.ID, FieldKey: "management_fee", Amount: 3, Basis: opex.BasisPctEGI,
	}); err != nil {
		t.Fatalf("upsert opex: %v", err)
	}

	tpl, err := store.CreateTemplate(ctx, costs.Template{
		Name:        "Acquisition",
		ProjectType: string(project.TypeMultifamily),
		Lines: []costs.TemplateLine{
			{LineOrder: 1, Category: "acquisition", CostCode: "01-100", Description: "purchase", Unit: "ls", Quantity: 1, UnitCost: 1000000},
		},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if _, err := store.CloneTemplateToBudget(ctx, tpl.ID, p.ID); err != nil {
		t.Fatalf("clone budget: %v", err)
	}

	return &fixture{
		svc:       New(store, store, store, store, store, cache, nil),
		store:     store,
		cache:     cache,
		projectID: p.ID,
	}
}

func baseAssumptions() report.Assumptions {
	return report.Assumptions{
		TotalRentableSF: 12000,
		MarketRentPSF:   15,
		VacancyPct:      5,
		ExitCapRate:     6,
		SellingCostPct:  2,
		DiscountRate:    8,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCashFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cf, err := f.svc.CashFlow(ctx, f.projectID, baseAssumptions())
	if err != nil {
		t.Fatalf("cash flow: %v", err)
	}
	if len(cf.Years) != 6 {
		t.Fatalf("years = %d, want 6", len(cf.Years))
	}
	approx(t, "budget total", cf.BudgetTotal, 1000000)

	y0 := cf.Years[0]
	if y0.Year != 0 {
		t.Fatalf("first year index = %d", y0.Year)
	}
	approx(t, "year 0 capital", y0.CapitalCosts, 1000000)
	approx(t, "year 0 net", y0.NetCashFlow, -1000000)

	// 10,000 SF leased of 12,000: 2,000 SF vacant at $15 market rent.
	y1 := cf.Years[1]
	approx(t, "lease revenue", y1.LeaseRevenue, 200000)
	approx(t, "market revenue", y1.MarketRevenue, 30000)
	approx(t, "gross", y1.GrossRevenue, 230000)
	approx(t, "vacancy loss", y1.VacancyLoss, 11500)
	approx(t, "egi", y1.EffectiveGrossIncome, 218500)
	// 50,000 fixed plus 3% of EGI.
	approx(t, "opex", y1.OperatingExpenses, 50000+0.03*218500)
	approx(t, "noi", y1.NOI, 218500-50000-0.03*218500)

	// No growth sets and a flat lease: every operating year matches year 1.
	for _, y := range cf.Years[2:] {
		approx(t, "steady noi", y.NOI, y1.NOI)
	}
	approx(t, "cumulative", cf.Years[5].Cumulative, -1000000+5*y1.NOI)
}

func TestCashFlowGrowth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rent, err := f.store.ReplaceGrowthRateSet(ctx, benchmark.GrowthRateSet{
		Name: "Market rent 3%",
		Kind: benchmark.GrowthRent,
		Steps: []benchmark.GrowthStep{
			{StepOrder: 1, FromPeriod: 1, ThruPeriod: benchmark.OpenEnded, AnnualRate: 3},
		},
	})
	if err != nil {
		t.Fatalf("growth set: %v", err)
	}
	expense, err := f.store.ReplaceGrowthRateSet(ctx, benchmark.GrowthRateSet{
		Name: "Expenses 2%",
		Kind: benchmark.GrowthExpense,
		Steps: []benchmark.GrowthStep{
			{StepOrder: 1, FromPeriod: 1, ThruPeriod: benchmark.OpenEnded, AnnualRate: 2},
		},
	})
	if err != nil {
		t.Fatalf("growth set: %v", err)
	}

	a := baseAssumptions()
	a.RentGrowthSetID = rent.ID
	a.ExpenseGrowthSetID = expense.ID

	cf, err := f.svc.CashFlow(ctx, f.projectID, a)
	if err != nil {
		t.Fatalf("cash flow: %v", err)
	}

	// Year 1 is ungrown; year 2 market rent compounds once. Contract rent
	// follows the lease schedule, not the market growth set.
	approx(t, "year 1 market", cf.Years[1].MarketRevenue, 30000)
	approx(t, "year 2 market", cf.Years[2].MarketRevenue, 30000*1.03)
	approx(t, "year 2 lease", cf.Years[2].LeaseRevenue, 200000)

	y2 := cf.Years[2]
	fixedGrown := 50000 * 1.02
	approx(t, "year 2 opex", y2.OperatingExpenses, fixedGrown+0.03*y2.EffectiveGrossIncome)
}

func TestCashFlowValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := baseAssumptions()
	a.TotalRentableSF = 0
	if _, err := f.svc.CashFlow(ctx, f.projectID, a); err == nil {
		t.Fatal("expected error for zero rentable SF")
	}

	a = baseAssumptions()
	a.VacancyPct = 140
	if _, err := f.svc.CashFlow(ctx, f.projectID, a); err == nil {
		t.Fatal("expected error for vacancy over 100")
	}

	if _, err := f.svc.CashFlow(ctx, "no-such-project", baseAssumptions()); err == nil {
		t.Fatal("expected error for unknown project")
	}
}

func TestCashFlowCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := baseAssumptions()

	if _, err := f.svc.CashFlow(ctx, f.projectID, a); err != nil {
		t.Fatalf("cash flow: %v", err)
	}
	if f.cache.sets != 1 || f.cache.hits != 0 {
		t.Fatalf("after first call: sets=%d hits=%d", f.cache.sets, f.cache.hits)
	}

	if _, err := f.svc.CashFlow(ctx, f.projectID, a); err != nil {
		t.Fatalf("cash flow: %v", err)
	}
	if f.cache.hits != 1 {
		t.Fatalf("second call should hit the cache, hits=%d", f.cache.hits)
	}

	// Different assumptions key differently.
	b := a
	b.VacancyPct = 10
	if _, err := f.svc.CashFlow(ctx, f.projectID, b); err != nil {
		t.Fatalf("cash flow: %v", err)
	}
	if f.cache.sets != 2 {
		t.Fatalf("changed assumptions should miss, sets=%d", f.cache.sets)
	}

	f.svc.Invalidate(ctx, f.projectID)
	if _, err := f.svc.CashFlow(ctx, f.projectID, a); err != nil {
		t.Fatalf("cash flow: %v", err)
	}
	if f.cache.hits != 1 || f.cache.sets != 3 {
		t.Fatalf("after invalidate: sets=%d hits=%d", f.cache.sets, f.cache.hits)
	}
}

func TestReturns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := baseAssumptions()

	ret, err := f.svc.Returns(ctx, f.projectID, a)
	if err != nil {
		t.Fatalf("returns: %v", err)
	}
	if len(ret.Flows) != 6 {
		t.Fatalf("flows = %d, want 6", len(ret.Flows))
	}

	noi := 218500 - 50000 - 0.03*218500
	approx(t, "terminal value", ret.TerminalValue, noi/0.06*0.98)
	approx(t, "flow 0", ret.Flows[0], -1000000)
	approx(t, "final flow", ret.Flows[5], noi+ret.TerminalValue)

	if ret.IRRPct == nil {
		t.Fatal("expected an IRR for a profitable projection")
	}
	if *ret.IRRPct <= 0 {
		t.Fatalf("irr = %v, want positive", *ret.IRRPct)
	}
	if ret.NPV <= 0 {
		t.Fatalf("npv = %v, want positive at an 8%% discount rate", ret.NPV)
	}
	if ret.EquityMultiple <= 1 {
		t.Fatalf("equity multiple = %v, want above 1", ret.EquityMultiple)
	}
	if len(ret.CashOnCash) != 5 {
		t.Fatalf("cash on cash = %d entries, want 5", len(ret.CashOnCash))
	}
	approx(t, "year 1 cash on cash", ret.CashOnCash[0], noi/1000000*100)

	if _, err := f.svc.Returns(ctx, f.projectID, report.Assumptions{TotalRentableSF: 12000}); err == nil {
		t.Fatal("expected error for zero exit cap rate")
	}
}

func TestValuation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := baseAssumptions()

	val, err := f.svc.Valuation(ctx, f.projectID, a)
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}

	noi := 218500 - 50000 - 0.03*218500
	approx(t, "stabilized noi", val.StabilizedNOI, noi)
	approx(t, "direct cap", val.DirectCapValue, noi/0.06)
	if val.DCFValue <= 0 {
		t.Fatalf("dcf = %v, want positive", val.DCFValue)
	}

	// The DCF discounts the operating flows plus the terminal sale.
	flows := append([]float64{0}, make([]float64, 5)...)
	for i := 1; i <= 5; i++ {
		flows[i] = noi
	}
	flows[5] += noi / 0.06 * 0.98
	approx(t, "dcf", val.DCFValue, NPV(0.08, flows))
}
