// Package storage defines the persistence interfaces the application
// services depend on.
package storage

import (
	"context"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
	"github.com/landscape-hq/underwriter/internal/app/domain/document"
	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	"github.com/landscape-hq/underwriter/internal/app/domain/parcel"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Owner          string
	Status         project.Status
	Type           project.Type
	IncludeDeleted bool
}

// ProjectStore persists projects and their parcels.
type ProjectStore interface {
	CreateProject(ctx context.Context, p project.Project) (project.Project, error)
	UpdateProject(ctx context.Context, p project.Project) (project.Project, error)
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]project.Project, error)
	SoftDeleteProject(ctx context.Context, id string) error
	RestoreProject(ctx context.Context, id string) error
	HardDeleteProject(ctx context.Context, id string) error

	CreateParcel(ctx context.Context, p parcel.Parcel) (parcel.Parcel, error)
	UpdateParcel(ctx context.Context, p parcel.Parcel) (parcel.Parcel, error)
	GetParcel(ctx context.Context, id string) (parcel.Parcel, error)
	ListParcels(ctx context.Context, projectID string) ([]parcel.Parcel, error)
	DeleteParcel(ctx context.Context, id string) error
}

// LeaseStore persists leases.
type LeaseStore interface {
	CreateLease(ctx context.Context, l lease.Lease) (lease.Lease, error)
	UpdateLease(ctx context.Context, l lease.Lease) (lease.Lease, error)
	GetLease(ctx context.Context, id string) (lease.Lease, error)
	ListLeases(ctx context.Context, projectID string) ([]lease.Lease, error)
	DeleteLease(ctx context.Context, id string) error
}

// BenchmarkStore persists the benchmark library.
type BenchmarkStore interface {
	CreateUnitCost(ctx context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error)
	UpdateUnitCost(ctx context.Context, uc benchmark.UnitCost) (benchmark.UnitCost, error)
	GetUnitCost(ctx context.Context, id string) (benchmark.UnitCost, error)
	ListUnitCosts(ctx context.Context, category, search string) ([]benchmark.UnitCost, error)
	DeleteUnitCost(ctx context.Context, id string) error

	// ReplaceGrowthRateSet writes the set and all its steps atomically,
	// replacing any existing steps.
	ReplaceGrowthRateSet(ctx context.Context, set benchmark.GrowthRateSet) (benchmark.GrowthRateSet, error)
	GetGrowthRateSet(ctx context.Context, id string) (benchmark.GrowthRateSet, error)
	ListGrowthRateSets(ctx context.Context, kind benchmark.GrowthKind) ([]benchmark.GrowthRateSet, error)
	DeleteGrowthRateSet(ctx context.Context, id string) error

	CreateSuggestion(ctx context.Context, s benchmark.Suggestion) (benchmark.Suggestion, error)
	GetSuggestion(ctx context.Context, id string) (benchmark.Suggestion, error)
	ListSuggestions(ctx context.Context, status benchmark.SuggestionStatus) ([]benchmark.Suggestion, error)
	// ApproveSuggestion copies the suggestion into the unit-cost library and
	// marks it approved in one transaction.
	ApproveSuggestion(ctx context.Context, id string) (benchmark.Suggestion, benchmark.UnitCost, error)
	RejectSuggestion(ctx context.Context, id, reason string) (benchmark.Suggestion, error)
}

// OpexStore persists per-project operating-expense entries.
type OpexStore interface {
	UpsertOpexEntry(ctx context.Context, e opex.Entry) (opex.Entry, error)
	GetOpexEntry(ctx context.Context, id string) (opex.Entry, error)
	ListOpexEntries(ctx context.Context, projectID string) ([]opex.Entry, error)
	DeleteOpexEntry(ctx context.Context, id string) error
}

// CompStore persists market comparables.
type CompStore interface {
	CreateComp(ctx context.Context, c marketcomp.Comp) (marketcomp.Comp, error)
	UpdateComp(ctx context.Context, c marketcomp.Comp) (marketcomp.Comp, error)
	GetComp(ctx context.Context, id string) (marketcomp.Comp, error)
	ListComps(ctx context.Context, market string) ([]marketcomp.Comp, error)
	DeleteComp(ctx context.Context, id string) error
}

// CostStore persists cost templates and project budgets.
type CostStore interface {
	// CreateTemplate writes the template and its lines atomically.
	CreateTemplate(ctx context.Context, t costs.Template) (costs.Template, error)
	ReplaceTemplateLines(ctx context.Context, templateID string, lines []costs.TemplateLine) (costs.Template, error)
	GetTemplate(ctx context.Context, id string) (costs.Template, error)
	ListTemplates(ctx context.Context, projectType string) ([]costs.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// CloneTemplateToBudget copies template lines into a project budget in
	// one transaction, replacing lines previously cloned from that template.
	CloneTemplateToBudget(ctx context.Context, templateID, projectID string) ([]costs.BudgetLine, error)
	ListBudgetLines(ctx context.Context, projectID string) ([]costs.BudgetLine, error)
	GetBudgetLine(ctx context.Context, id string) (costs.BudgetLine, error)
	UpdateBudgetLine(ctx context.Context, l costs.BudgetLine) (costs.BudgetLine, error)
	DeleteBudgetLine(ctx context.Context, id string) error
}

// DocumentStore persists documents and extraction results.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d document.Document) (document.Document, error)
	UpdateDocument(ctx context.Context, d document.Document) (document.Document, error)
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context, projectID string, status document.Status) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// ClaimPendingDocuments flips up to limit pending documents to processing
	// and returns them, so only one poller run works a document at a time.
	ClaimPendingDocuments(ctx context.Context, limit int) ([]document.Document, error)
	// SaveExtraction stores the fields and flips the document's status in one
	// transaction.
	SaveExtraction(ctx context.Context, documentID string, fields []document.ExtractedField, status document.Status, extractErr string) error
	GetExtraction(ctx context.Context, documentID string) (document.Extraction, error)
}
