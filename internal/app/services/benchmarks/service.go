package benchmarks

import (
	"context"
	"fmt"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service manages the shared benchmark library: unit costs, growth-rate
// sets, and AI-proposed suggestions.
type Service struct {
	store storage.BenchmarkStore
	log   *logging.Logger
}

// New creates a configured benchmark service.
func New(store storage.BenchmarkStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("benchmarks")
	}
	return &Service{store: store, log: log}
}

func validateUnitCost(uc benchmark.UnitCost) error {
	if uc.Category == "" {
		return fmt.Errorf("category is required")
	}
	if uc.CostCode == "" {
		return fmt.Errorf("cost_code is required")
	}
	if uc.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !benchmark.ValidUnit(uc.Unit) {
		return fmt.Errorf("unknown unit %q", uc.Unit)
	}
	if uc.LowValue < 0 || uc.TypicalValue < 0 || uc.HighValue < 0 {
		return fmt.Errorf("cost values cannot be negative")
	}
	if uc.LowValue > uc.TypicalValue || uc.TypicalValue > uc.HighValue {
		return fmt.Errorf("cost values must satisfy low <= typical <= high")
	}
	return nil
}

// CreateUnitCost adds a unit-cost benchmark to the library.
func (s *Service) CreateUnitCost(ctx context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	uc.Category = strings.TrimSpace(uc.Category)
	uc.CostCode = strings.TrimSpace(uc.CostCode)
	uc.Description = strings.TrimSpace(uc.Description)
	if err := validateUnitCost(uc); err != nil {
		return benchmark.UnitCost{}, err
	}

	uc, err := s.store.CreateUnitCost(ctx, uc)
	if err != nil {
		return benchmark.UnitCost{}, err
	}
	s.log.WithField("benchmark_id", uc.ID).
		WithField("cost_code", uc.CostCode).
		Info("unit cost benchmark created")
	return uc, nil
}

// UpdateUnitCost replaces a unit-cost benchmark's fields.
func (s *Service) UpdateUnitCost(ctx context.Context, id string, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	existing, err := s.store.GetUnitCost(ctx, id)
	if err != nil {
		return benchmark.UnitCost{}, err
	}

	uc.ID = existing.ID
	uc.CreatedAt = existing.CreatedAt
	uc.Category = strings.TrimSpace(uc.Category)
	uc.CostCode = strings.TrimSpace(uc.CostCode)
	uc.Description = strings.TrimSpace(uc.Description)
	if err := validateUnitCost(uc); err != nil {
		return benchmark.UnitCost{}, err
	}
	return s.store.UpdateUnitCost(ctx, uc)
}

// GetUnitCost fetches a unit-cost benchmark by identifier.
func (s *Service) GetUnitCost(ctx context.Context, id string) (benchmark.UnitCost, error) {
	return s.store.GetUnitCost(ctx, id)
}

// ListUnitCosts returns benchmarks, optionally narrowed by category and a
// search term matched against cost code and description.
func (s *Service) ListUnitCosts(ctx context.Context, category, search string) ([]benchmark.UnitCost, error) {
	return s.store.ListUnitCosts(ctx, strings.TrimSpace(category), strings.TrimSpace(search))
}

// DeleteUnitCost removes a benchmark from the library.
func (s *Service) DeleteUnitCost(ctx context.Context, id string) error {
	if err := s.store.DeleteUnitCost(ctx, id); err != nil {
		return err
	}
	s.log.WithField("benchmark_id", id).Info("unit cost benchmark deleted")
	return nil
}

// SaveGrowthRateSet validates and writes a growth-rate set with its steps.
// The steps are persisted atomically, replacing any existing ones.
func (s *Service) SaveGrowthRateSet(ctx context.Context, set benchmark.GrowthRateSet) (benchmark.GrowthRateSet, error) {
	set.Name = strings.TrimSpace(set.Name)
	if set.Name == "" {
		return benchmark.GrowthRateSet{}, fmt.Errorf("name is required")
	}
	if !benchmark.ValidGrowthKind(set.Kind) {
		return benchmark.GrowthRateSet{}, fmt.Errorf("unknown growth kind %q", set.Kind)
	}
	if err := benchmark.ValidateSteps(set.Steps); err != nil {
		return benchmark.GrowthRateSet{}, err
	}

	set, err := s.store.ReplaceGrowthRateSet(ctx, set)
	if err != nil {
		return benchmark.GrowthRateSet{}, err
	}
	s.log.WithField("set_id", set.ID).
		WithField("kind", string(set.Kind)).
		WithField("steps", len(set.Steps)).
		Info("growth rate set saved")
	return set, nil
}

// GetGrowthRateSet fetches a set with its steps.
func (s *Service) GetGrowthRateSet(ctx context.Context, id string) (benchmark.GrowthRateSet, error) {
	return s.store.GetGrowthRateSet(ctx, id)
}

// ListGrowthRateSets returns sets, optionally filtered by kind.
func (s *Service) ListGrowthRateSets(ctx context.Context, kind benchmark.GrowthKind) ([]benchmark.GrowthRateSet, error) {
	if kind != "" && !benchmark.ValidGrowthKind(kind) {
		return nil, fmt.Errorf("unknown growth kind %q", kind)
	}
	return s.store.ListGrowthRateSets(ctx, kind)
}

// DeleteGrowthRateSet removes a set and its steps.
func (s *Service) DeleteGrowthRateSet(ctx context.Context, id string) error {
	return s.store.DeleteGrowthRateSet(ctx, id)
}

// CreateSuggestion records an AI-proposed benchmark for review.
func (s *Service) CreateSuggestion(ctx context.Context, sg benchmark.Suggestion) (benchmark.Suggestion, error) {
	sg.Category = strings.TrimSpace(sg.Category)
	sg.CostCode = strings.TrimSpace(sg.CostCode)
	sg.Description = strings.TrimSpace(sg.Description)
	if sg.Category == "" || sg.CostCode == "" || sg.Description == "" {
		return benchmark.Suggestion{}, fmt.Errorf("category, cost_code, and description are required")
	}
	if !benchmark.ValidUnit(sg.Unit) {
		return benchmark.Suggestion{}, fmt.Errorf("unknown unit %q", sg.Unit)
	}
	if sg.TypicalValue < 0 {
		return benchmark.Suggestion{}, fmt.Errorf("typical_value cannot be negative")
	}
	if sg.Confidence < 0 || sg.Confidence > 1 {
		return benchmark.Suggestion{}, fmt.Errorf("confidence must be between 0 and 1")
	}
	sg.Status = benchmark.SuggestionPending
	sg.BenchmarkID = ""
	sg.RejectionReason = ""

	sg, err := s.store.CreateSuggestion(ctx, sg)
	if err != nil {
		return benchmark.Suggestion{}, err
	}
	s.log.WithField("suggestion_id", sg.ID).
		WithField("cost_code", sg.CostCode).
		WithField("confidence", sg.Confidence).
		Info("benchmark suggestion recorded")
	return sg, nil
}

// GetSuggestion fetches a suggestion by identifier.
func (s *Service) GetSuggestion(ctx context.Context, id string) (benchmark.Suggestion, error) {
	return s.store.GetSuggestion(ctx, id)
}

// ListSuggestions returns suggestions, optionally filtered by status.
func (s *Service) ListSuggestions(ctx context.Context, status benchmark.SuggestionStatus) ([]benchmark.Suggestion, error) {
	return s.store.ListSuggestions(ctx, status)
}

// ApproveSuggestion promotes a pending suggestion into the unit-cost
// library. The new benchmark and the status change commit together.
func (s *Service) ApproveSuggestion(ctx context.Context, id string) (benchmark.Suggestion, benchmark.UnitCost, error) {
	sg, uc, err := s.store.ApproveSuggestion(ctx, id)
	if err != nil {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, err
	}
	s.log.WithField("suggestion_id", sg.ID).
		WithField("benchmark_id", uc.ID).
		Info("benchmark suggestion approved")
	return sg, uc, nil
}

// RejectSuggestion marks a pending suggestion rejected.
func (s *Service) RejectSuggestion(ctx context.Context, id, reason string) (benchmark.Suggestion, error) {
	sg, err := s.store.RejectSuggestion(ctx, id, strings.TrimSpace(reason))
	if err != nil {
		return benchmark.Suggestion{}, err
	}
	s.log.WithField("suggestion_id", sg.ID).Info("benchmark suggestion rejected")
	return sg, nil
}
