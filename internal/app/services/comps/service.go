package comps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service manages market comparables and their summary statistics.
type Service struct {
	store storage.CompStore
	log   *logging.Logger
}

// New creates a configured comp service.
func New(store storage.CompStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("comps")
	}
	return &Service{store: store, log: log}
}

func validate(c marketcomp.Comp) error {
	if c.PropertyName == "" {
		return fmt.Errorf("property_name is required")
	}
	if c.Market == "" {
		return fmt.Errorf("market is required")
	}
	if c.PropertyType == "" {
		return fmt.Errorf("property_type is required")
	}
	if c.Units < 0 {
		return fmt.Errorf("units cannot be negative")
	}
	if c.AvgUnitSF < 0 {
		return fmt.Errorf("avg_unit_sf cannot be negative")
	}
	if c.AskingRent < 0 {
		return fmt.Errorf("asking_rent cannot be negative")
	}
	if c.OccupancyPct < 0 || c.OccupancyPct > 100 {
		return fmt.Errorf("occupancy_pct must be between 0 and 100")
	}
	return nil
}

// Create records a market comparable.
func (s *Service) Create(ctx context.Context, c marketcomp.Comp) (marketcomp.Comp, error) {
	c.PropertyName = strings.TrimSpace(c.PropertyName)
	c.Market = strings.TrimSpace(c.Market)
	c.Submarket = strings.TrimSpace(c.Submarket)
	c.PropertyType = strings.TrimSpace(strings.ToLower(c.PropertyType))
	if err := validate(c); err != nil {
		return marketcomp.Comp{}, err
	}

	c, err := s.store.CreateComp(ctx, c)
	if err != nil {
		return marketcomp.Comp{}, err
	}
	s.log.WithField("comp_id", c.ID).
		WithField("market", c.Market).
		Info("market comp recorded")
	return c, nil
}

// Update replaces a comp's fields.
func (s *Service) Update(ctx context.Context, id string, c marketcomp.Comp) (marketcomp.Comp, error) {
	existing, err := s.store.GetComp(ctx, id)
	if err != nil {
		return marketcomp.Comp{}, err
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.PropertyName = strings.TrimSpace(c.PropertyName)
	c.Market = strings.TrimSpace(c.Market)
	c.Submarket = strings.TrimSpace(c.Submarket)
	c.PropertyType = strings.TrimSpace(strings.ToLower(c.PropertyType))
	if err := validate(c); err != nil {
		return marketcomp.Comp{}, err
	}
	return s.store.UpdateComp(ctx, c)
}

// Get fetches a comp by identifier.
func (s *Service) Get(ctx context.Context, id string) (marketcomp.Comp, error) {
	return s.store.GetComp(ctx, id)
}

// List returns comps, optionally narrowed to one market.
func (s *Service) List(ctx context.Context, market string) ([]marketcomp.Comp, error) {
	return s.store.ListComps(ctx, strings.TrimSpace(market))
}

// Delete removes a comp.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteComp(ctx, id)
}

// Summarize computes aggregate rent statistics for a market.
func (s *Service) Summarize(ctx context.Context, market string) (marketcomp.MarketSummary, error) {
	market = strings.TrimSpace(market)
	if market == "" {
		return marketcomp.MarketSummary{}, fmt.Errorf("market is required")
	}
	all, err := s.store.ListComps(ctx, market)
	if err != nil {
		return marketcomp.MarketSummary{}, err
	}
	return Summarize(market, all), nil
}

// Summarize aggregates comp rent and occupancy statistics. Percentiles use
// the empirical distribution of the sorted rent series.
func Summarize(market string, all []marketcomp.Comp) marketcomp.MarketSummary {
	summary := marketcomp.MarketSummary{Market: market, Count: len(all)}
	if len(all) == 0 {
		return summary
	}

	rents := make([]float64, 0, len(all))
	occupancy := make([]float64, 0, len(all))
	var psf []float64
	for _, c := range all {
		rents = append(rents, c.AskingRent)
		occupancy = append(occupancy, c.OccupancyPct)
		if v := c.RentPSF(); v > 0 {
			psf = append(psf, v)
		}
	}
	sort.Float64s(rents)

	summary.MeanRent = stat.Mean(rents, nil)
	summary.MedianRent = stat.Quantile(0.5, stat.Empirical, rents, nil)
	summary.P25Rent = stat.Quantile(0.25, stat.Empirical, rents, nil)
	summary.P75Rent = stat.Quantile(0.75, stat.Empirical, rents, nil)
	summary.MeanOccupancy = stat.Mean(occupancy, nil)
	if len(psf) > 0 {
		summary.MeanRentPSF = stat.Mean(psf, nil)
	}
	return summary
}
