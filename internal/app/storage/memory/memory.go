// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
	"github.com/landscape-hq/underwriter/internal/app/domain/document"
	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/domain/parcel"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/storage"
)

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	projects    map[string]project.Project
	parcels     map[string]parcel.Parcel
	leases      map[string]lease.Lease
	unitCosts   map[string]benchmark.UnitCost
	growthSets  map[string]benchmark.GrowthRateSet
	suggestions map[string]benchmark.Suggestion
	opexEntries map[string]opex.Entry
	comps       map[string]marketcomp.Comp
	templates   map[string]costs.Template
	budgetLines map[string]costs.BudgetLine
	documents   map[string]document.Document
	extractions map[string][]document.ExtractedField
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.LeaseStore = (*Store)(nil)
var _ storage.BenchmarkStore = (*Store)(nil)
var _ storage.OpexStore = (*Store)(nil)
var _ storage.CompStore = (*Store)(nil)
var _ storage.CostStore = (*Store)(nil)
var _ storage.DocumentStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:      1,
		projects:    make(map[string]project.Project),
		parcels:     make(map[string]parcel.Parcel),
		leases:      make(map[string]lease.Lease),
		unitCosts:   make(map[string]benchmark.UnitCost),
		growthSets:  make(map[string]benchmark.GrowthRateSet),
		suggestions: make(map[string]benchmark.Suggestion),
		opexEntries: make(map[string]opex.Entry),
		comps:       make(map[string]marketcomp.Comp),
		templates:   make(map[string]costs.Template),
		budgetLines: make(map[string]costs.BudgetLine),
		documents:   make(map[string]document.Document),
		extractions: make(map[string][]document.ExtractedField),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// ProjectStore implementation -------------------------------------------------

func (s *Store) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.projects {
		if existing.Owner == p.Owner && strings.EqualFold(existing.Name, p.Name) && !existing.Deleted() {
			return project.Project{}, fmt.Errorf("project name %q already in use", p.Name)
		}
	}

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.projects[p.ID]; exists {
		return project.Project{}, fmt.Errorf("project %s already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[p.ID]
	if !ok {
		return project.Project{}, sql.ErrNoRows
	}
	p.CreatedAt = existing.CreatedAt
	p.DeletedAt = existing.DeletedAt
	p.UpdatedAt = time.Now().UTC()
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context, filter storage.ProjectFilter) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []project.Project
	for _, p := range s.projects {
		if p.Deleted() && !filter.IncludeDeleted {
			continue
		}
		if filter.Owner != "" && p.Owner != filter.Owner {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SoftDeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	s.projects[id] = p
	return nil
}

func (s *Store) RestoreProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.DeletedAt = nil
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	return nil
}

func (s *Store) HardDeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.projects, id)
	for pid, pc := range s.parcels {
		if pc.ProjectID == id {
			delete(s.parcels, pid)
		}
	}
	return nil
}

func (s *Store) CreateParcel(_ context.Context, p parcel.Parcel) (parcel.Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ProjectID]; !ok {
		return parcel.Parcel{}, sql.ErrNoRows
	}
	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.parcels[p.ID] = p
	return p, nil
}

func (s *Store) UpdateParcel(_ context.Context, p parcel.Parcel) (parcel.Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.parcels[p.ID]
	if !ok {
		return parcel.Parcel{}, sql.ErrNoRows
	}
	p.ProjectID = existing.ProjectID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.parcels[p.ID] = p
	return p, nil
}

func (s *Store) GetParcel(_ context.Context, id string) (parcel.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	if !ok {
		return parcel.Parcel{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListParcels(_ context.Context, projectID string) ([]parcel.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []parcel.Parcel
	for _, p := range s.parcels {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteParcel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parcels[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.parcels, id)
	return nil
}

// LeaseStore implementation ---------------------------------------------------

func (s *Store) CreateLease(_ context.Context, l lease.Lease) (lease.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[l.ProjectID]; !ok {
		return lease.Lease{}, sql.ErrNoRows
	}
	if l.ID == "" {
		l.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	s.leases[l.ID] = l
	return l, nil
}

func (s *Store) UpdateLease(_ context.Context, l lease.Lease) (lease.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.leases[l.ID]
	if !ok {
		return lease.Lease{}, sql.ErrNoRows
	}
	l.ProjectID = existing.ProjectID
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = time.Now().UTC()
	s.leases[l.ID] = l
	return l, nil
}

func (s *Store) GetLease(_ context.Context, id string) (lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leases[id]
	if !ok {
		return lease.Lease{}, sql.ErrNoRows
	}
	return l, nil
}

func (s *Store) ListLeases(_ context.Context, projectID string) ([]lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []lease.Lease
	for _, l := range s.leases {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteLease(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leases[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.leases, id)
	return nil
}

// BenchmarkStore implementation -----------------------------------------------

func (s *Store) CreateUnitCost(_ context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUnitCostLocked(uc)
}

func (s *Store) createUnitCostLocked(uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	if uc.ID == "" {
		uc.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	uc.CreatedAt = now
	uc.UpdatedAt = now
	s.unitCosts[uc.ID] = uc
	return uc, nil
}

func (s *Store) UpdateUnitCost(_ context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.unitCosts[uc.ID]
	if !ok {
		return benchmark.UnitCost{}, sql.ErrNoRows
	}
	uc.CreatedAt = existing.CreatedAt
	uc.UpdatedAt = time.Now().UTC()
	s.unitCosts[uc.ID] = uc
	return uc, nil
}

func (s *Store) GetUnitCost(_ context.Context, id string) (benchmark.UnitCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uc, ok := s.unitCosts[id]
	if !ok {
		return benchmark.UnitCost{}, sql.ErrNoRows
	}
	return uc, nil
}

func (s *Store) ListUnitCosts(_ context.Context, category, search string) ([]benchmark.UnitCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []benchmark.UnitCost
	for _, uc := range s.unitCosts {
		if category != "" && !strings.EqualFold(uc.Category, category) {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(uc.Description), needle) &&
				!strings.Contains(strings.ToLower(uc.CostCode), needle) {
				continue
			}
		}
		out = append(out, uc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostCode < out[j].CostCode })
	return out, nil
}

func (s *Store) DeleteUnitCost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.unitCosts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.unitCosts, id)
	return nil
}

func (s *Store) ReplaceGrowthRateSet(_ context.Context, set benchmark.GrowthRateSet) (benchmark.GrowthRateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set.ID == "" {
		set.ID = s.nextIDLocked()
		set.CreatedAt = time.Now().UTC()
	} else if existing, ok := s.growthSets[set.ID]; ok {
		set.CreatedAt = existing.CreatedAt
	} else {
		set.CreatedAt = time.Now().UTC()
	}
	set.UpdatedAt = time.Now().UTC()
	for i := range set.Steps {
		if set.Steps[i].ID == "" {
			set.Steps[i].ID = s.nextIDLocked()
		}
		set.Steps[i].SetID = set.ID
		set.Steps[i].StepOrder = i + 1
	}
	s.growthSets[set.ID] = set
	return set, nil
}

func (s *Store) GetGrowthRateSet(_ context.Context, id string) (benchmark.GrowthRateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.growthSets[id]
	if !ok {
		return benchmark.GrowthRateSet{}, sql.ErrNoRows
	}
	return set, nil
}

func (s *Store) ListGrowthRateSets(_ context.Context, kind benchmark.GrowthKind) ([]benchmark.GrowthRateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []benchmark.GrowthRateSet
	for _, set := range s.growthSets {
		if kind != "" && set.Kind != kind {
			continue
		}
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteGrowthRateSet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.growthSets[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.growthSets, id)
	return nil
}

func (s *Store) CreateSuggestion(_ context.Context, sg benchmark.Suggestion) (benchmark.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sg.ID == "" {
		sg.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	sg.CreatedAt = now
	sg.UpdatedAt = now
	if sg.Status == "" {
		sg.Status = benchmark.SuggestionPending
	}
	s.suggestions[sg.ID] = sg
	return sg, nil
}

func (s *Store) GetSuggestion(_ context.Context, id string) (benchmark.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return benchmark.Suggestion{}, sql.ErrNoRows
	}
	return sg, nil
}

func (s *Store) ListSuggestions(_ context.Context, status benchmark.SuggestionStatus) ([]benchmark.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []benchmark.Suggestion
	for _, sg := range s.suggestions {
		if status != "" && sg.Status != status {
			continue
		}
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ApproveSuggestion(_ context.Context, id string) (benchmark.Suggestion, benchmark.UnitCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, sql.ErrNoRows
	}
	if sg.Status != benchmark.SuggestionPending {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, fmt.Errorf("suggestion %s is %s, not pending", id, sg.Status)
	}

	uc, err := s.createUnitCostLocked(benchmark.UnitCost{
		Category:      sg.Category,
		CostCode:      sg.CostCode,
		Description:   sg.Description,
		Unit:          sg.Unit,
		TypicalValue:  sg.TypicalValue,
		Source:        "ai_suggestion",
		EffectiveYear: time.Now().UTC().Year(),
	})
	if err != nil {
		return benchmark.Suggestion{}, benchmark.UnitCost{}, err
	}

	sg.Status = benchmark.SuggestionApproved
	sg.BenchmarkID = uc.ID
	sg.UpdatedAt = time.Now().UTC()
	s.suggestions[id] = sg
	return sg, uc, nil
}

func (s *Store) RejectSuggestion(_ context.Context, id, reason string) (benchmark.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return benchmark.Suggestion{}, sql.ErrNoRows
	}
	if sg.Status != benchmark.SuggestionPending {
		return benchmark.Suggestion{}, fmt.Errorf("suggestion %s is %s, not pending", id, sg.Status)
	}
	sg.Status = benchmark.SuggestionRejected
	sg.RejectionReason = reason
	sg.UpdatedAt = time.Now().UTC()
	s.suggestions[id] = sg
	return sg, nil
}

// OpexStore implementation ----------------------------------------------------

func (s *Store) UpsertOpexEntry(_ context.Context, e opex.Entry) (opex.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[e.ProjectID]; !ok {
		return opex.Entry{}, sql.ErrNoRows
	}

	// One entry per project+field; writes replace in place.
	for id, existing := range s.opexEntries {
		if existing.ProjectID == e.ProjectID && existing.FieldKey == e.FieldKey {
			e.ID = id
			e.CreatedAt = existing.CreatedAt
			e.UpdatedAt = time.Now().UTC()
			s.opexEntries[id] = e
			return e, nil
		}
	}

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.opexEntries[e.ID] = e
	return e, nil
}

func (s *Store) GetOpexEntry(_ context.Context, id string) (opex.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.opexEntries[id]
	if !ok {
		return opex.Entry{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *Store) ListOpexEntries(_ context.Context, projectID string) ([]opex.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []opex.Entry
	for _, e := range s.opexEntries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldKey < out[j].FieldKey })
	return out, nil
}

func (s *Store) DeleteOpexEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.opexEntries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.opexEntries, id)
	return nil
}

// CompStore implementation ----------------------------------------------------

func (s *Store) CreateComp(_ context.Context, c marketcomp.Comp) (marketcomp.Comp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.comps[c.ID] = c
	return c, nil
}

func (s *Store) UpdateComp(_ context.Context, c marketcomp.Comp) (marketcomp.Comp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comps[c.ID]
	if !ok {
		return marketcomp.Comp{}, sql.ErrNoRows
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.comps[c.ID] = c
	return c, nil
}

func (s *Store) GetComp(_ context.Context, id string) (marketcomp.Comp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comps[id]
	if !ok {
		return marketcomp.Comp{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) ListComps(_ context.Context, market string) ([]marketcomp.Comp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []marketcomp.Comp
	for _, c := range s.comps {
		if market != "" && !strings.EqualFold(c.Market, market) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyName < out[j].PropertyName })
	return out, nil
}

func (s *Store) DeleteComp(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comps[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.comps, id)
	return nil
}

// CostStore implementation ----------------------------------------------------

func (s *Store) CreateTemplate(_ context.Context, t costs.Template) (costs.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Lines {
		if t.Lines[i].ID == "" {
			t.Lines[i].ID = s.nextIDLocked()
		}
		t.Lines[i].TemplateID = t.ID
		t.Lines[i].LineOrder = i + 1
	}
	s.templates[t.ID] = t
	return t, nil
}

func (s *Store) ReplaceTemplateLines(_ context.Context, templateID string, lines []costs.TemplateLine) (costs.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return costs.Template{}, sql.ErrNoRows
	}
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = s.nextIDLocked()
		}
		lines[i].TemplateID = templateID
		lines[i].LineOrder = i + 1
	}
	t.Lines = lines
	t.UpdatedAt = time.Now().UTC()
	s.templates[templateID] = t
	return t, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (costs.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return costs.Template{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *Store) ListTemplates(_ context.Context, projectType string) ([]costs.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []costs.Template
	for _, t := range s.templates {
		if projectType != "" && t.ProjectType != projectType {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.templates, id)
	return nil
}

func (s *Store) CloneTemplateToBudget(_ context.Context, templateID, projectID string) ([]costs.BudgetLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if _, ok := s.projects[projectID]; !ok {
		return nil, sql.ErrNoRows
	}

	for id, bl := range s.budgetLines {
		if bl.ProjectID == projectID && bl.TemplateID == templateID {
			delete(s.budgetLines, id)
		}
	}

	now := time.Now().UTC()
	out := make([]costs.BudgetLine, 0, len(t.Lines))
	for _, line := range t.Lines {
		bl := costs.BudgetLine{
			ID:             s.nextIDLocked(),
			ProjectID:      projectID,
			TemplateID:     templateID,
			LineOrder:      line.LineOrder,
			Category:       line.Category,
			CostCode:       line.CostCode,
			Description:    line.Description,
			Unit:           line.Unit,
			Quantity:       line.Quantity,
			UnitCost:       line.UnitCost,
			ContingencyPct: line.ContingencyPct,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		s.budgetLines[bl.ID] = bl
		out = append(out, bl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineOrder < out[j].LineOrder })
	return out, nil
}

func (s *Store) ListBudgetLines(_ context.Context, projectID string) ([]costs.BudgetLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []costs.BudgetLine
	for _, bl := range s.budgetLines {
		if bl.ProjectID == projectID {
			out = append(out, bl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineOrder < out[j].LineOrder })
	return out, nil
}

func (s *Store) GetBudgetLine(_ context.Context, id string) (costs.BudgetLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.budgetLines[id]
	if !ok {
		return costs.BudgetLine{}, sql.ErrNoRows
	}
	return l, nil
}

func (s *Store) UpdateBudgetLine(_ context.Context, l costs.BudgetLine) (costs.BudgetLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.budgetLines[l.ID]
	if !ok {
		return costs.BudgetLine{}, sql.ErrNoRows
	}
	l.ProjectID = existing.ProjectID
	l.TemplateID = existing.TemplateID
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = time.Now().UTC()
	s.budgetLines[l.ID] = l
	return l, nil
}

func (s *Store) DeleteBudgetLine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.budgetLines[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.budgetLines, id)
	return nil
}

// DocumentStore implementation ------------------------------------------------

func (s *Store) CreateDocument(_ context.Context, d document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = document.StatusPending
	}
	s.documents[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDocument(_ context.Context, d document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.documents[d.ID]
	if !ok {
		return document.Document{}, sql.ErrNoRows
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	s.documents[d.ID] = d
	return d, nil
}

func (s *Store) GetDocument(_ context.Context, id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[id]
	if !ok {
		return document.Document{}, sql.ErrNoRows
	}
	return d, nil
}

func (s *Store) ListDocuments(_ context.Context, projectID string, status document.Status) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []document.Document
	for _, d := range s.documents {
		if projectID != "" && d.ProjectID != projectID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.documents, id)
	delete(s.extractions, id)
	return nil
}

func (s *Store) ClaimPendingDocuments(_ context.Context, limit int) ([]document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []document.Document
	for _, d := range s.documents {
		if d.Status == document.StatusPending {
			pending = append(pending, d)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	now := time.Now().UTC()
	for i := range pending {
		pending[i].Status = document.StatusProcessing
		pending[i].UpdatedAt = now
		s.documents[pending[i].ID] = pending[i]
	}
	return pending, nil
}

func (s *Store) SaveExtraction(_ context.Context, documentID string, fields []document.ExtractedField, status document.Status, extractErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[documentID]
	if !ok {
		return sql.ErrNoRows
	}

	now := time.Now().UTC()
	for i := range fields {
		if fields[i].ID == "" {
			fields[i].ID = s.nextIDLocked()
		}
		fields[i].DocumentID = documentID
		fields[i].CreatedAt = now
	}
	s.extractions[documentID] = fields

	d.Status = status
	d.Error = extractErr
	d.UpdatedAt = now
	s.documents[documentID] = d
	return nil
}

func (s *Store) GetExtraction(_ context.Context, documentID string) (document.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.documents[documentID]; !ok {
		return document.Extraction{}, sql.ErrNoRows
	}

	fields := s.extractions[documentID]
	ext := document.Extraction{DocumentID: documentID, Fields: fields}
	for i, f := range fields {
		if i == 0 || f.Confidence < ext.MinConfidence {
			ext.MinConfidence = f.Confidence
		}
		ext.WarningCount += len(f.Warnings)
	}
	return ext, nil
}
