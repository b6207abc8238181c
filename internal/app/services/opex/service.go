package opex

import (
	"context"
	"fmt"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service manages per-project operating-expense entries and rollups.
type Service struct {
	projects storage.ProjectStore
	store    storage.OpexStore
	log      *logging.Logger
}

// New creates a configured opex service.
func New(projects storage.ProjectStore, store storage.OpexStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("opex")
	}
	return &Service{projects: projects, store: store, log: log}
}

// Fields returns the static expense taxonomy.
func (s *Service) Fields() []opex.Field {
	return opex.MultifamilyFields
}

// Upsert writes a project's expense entry for one taxonomy leaf, replacing
// any existing entry for the same field.
func (s *Service) Upsert(ctx context.Context, projectID string, e opex.Entry) (opex.Entry, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return opex.Entry{}, err
	}
	if p.Deleted() {
		return opex.Entry{}, fmt.Errorf("project %s is deleted", projectID)
	}

	e.ProjectID = p.ID
	e.FieldKey = strings.TrimSpace(e.FieldKey)
	if e.FieldKey == "" {
		return opex.Entry{}, fmt.Errorf("field_key is required")
	}
	if !opex.KnownField(e.FieldKey) {
		return opex.Entry{}, fmt.Errorf("unknown expense field %q", e.FieldKey)
	}
	if !opex.LeafField(e.FieldKey) {
		return opex.Entry{}, fmt.Errorf("expense field %q is a rollup, amounts go on its subfields", e.FieldKey)
	}
	if e.Amount < 0 {
		return opex.Entry{}, fmt.Errorf("amount cannot be negative")
	}
	if e.Basis == "" {
		if basis, ok := opex.DefaultBasisFor(e.FieldKey); ok {
			e.Basis = basis
		}
	}
	if !opex.ValidBasis(e.Basis) {
		return opex.Entry{}, fmt.Errorf("unknown basis %q", e.Basis)
	}

	e, err = s.store.UpsertOpexEntry(ctx, e)
	if err != nil {
		return opex.Entry{}, err
	}
	s.log.WithField("project_id", e.ProjectID).
		WithField("field_key", e.FieldKey).
		WithField("basis", string(e.Basis)).
		Info("opex entry saved")
	return e, nil
}

// List returns all entries for a project.
func (s *Service) List(ctx context.Context, projectID string) ([]opex.Entry, error) {
	return s.store.ListOpexEntries(ctx, projectID)
}

// Get returns one entry by id.
func (s *Service) Get(ctx context.Context, id string) (opex.Entry, error) {
	return s.store.GetOpexEntry(ctx, id)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteOpexEntry(ctx, id)
}

// SummaryInput scales entries whose basis depends on property size or
// income. Zero values leave the corresponding bases unscaled totals of 0.
type SummaryInput struct {
	Units      int
	RentableSF float64
	EGI        float64
}

// Annualize converts an entry amount to annual dollars under the input.
func Annualize(e opex.Entry, in SummaryInput) float64 {
	switch e.Basis {
	case opex.BasisPerUnit:
		return e.Amount * float64(in.Units)
	case opex.BasisPerSF:
		return e.Amount * in.RentableSF
	case opex.BasisPctEGI:
		return e.Amount / 100 * in.EGI
	default:
		return e.Amount
	}
}

// Summary returns the project's expense tree with rolled-up totals at every
// taxonomy level.
func (s *Service) Summary(ctx context.Context, projectID string, in SummaryInput) (opex.Summary, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return opex.Summary{}, err
	}
	entries, err := s.store.ListOpexEntries(ctx, projectID)
	if err != nil {
		return opex.Summary{}, err
	}

	annualized := make(map[string]float64, len(entries))
	for _, e := range entries {
		annualized[e.FieldKey] += Annualize(e, in)
	}

	tree, total := opex.Rollup(annualized)
	summary := opex.Summary{
		ProjectID: projectID,
		Total:     total,
		Tree:      tree,
	}
	if in.Units > 0 {
		summary.TotalPerUnit = total / float64(in.Units)
	}
	if in.RentableSF > 0 {
		summary.TotalPerSF = total / in.RentableSF
	}
	return summary, nil
}
