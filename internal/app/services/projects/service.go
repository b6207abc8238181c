package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/parcel"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/errors"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service manages investment and development projects and their parcels.
type Service struct {
	store storage.ProjectStore
	log   *logging.Logger
}

// New creates a configured project service.
func New(store storage.ProjectStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("projects")
	}
	return &Service{store: store, log: log}
}

// CreateInput carries the fields accepted when creating a project.
type CreateInput struct {
	Owner           string
	Name            string
	Type            string
	Address         string
	City            string
	State           string
	Zip             string
	AnalysisStart   time.Time
	HoldPeriodYears int
	Notes           string
}

// Create registers a new project in draft status.
func (s *Service) Create(ctx context.Context, in CreateInput) (project.Project, error) {
	in.Owner = strings.TrimSpace(in.Owner)
	in.Name = strings.TrimSpace(in.Name)
	projectType := project.Type(strings.TrimSpace(strings.ToLower(in.Type)))

	if in.Owner == "" {
		return project.Project{}, fmt.Errorf("owner is required")
	}
	if in.Name == "" {
		return project.Project{}, fmt.Errorf("name is required")
	}
	if !project.ValidType(projectType) {
		return project.Project{}, fmt.Errorf("unknown project type %q", in.Type)
	}
	if in.HoldPeriodYears <= 0 {
		in.HoldPeriodYears = 10
	}
	if in.HoldPeriodYears > 50 {
		return project.Project{}, fmt.Errorf("hold_period_years cannot exceed 50")
	}
	if in.AnalysisStart.IsZero() {
		in.AnalysisStart = time.Now().UTC()
	}

	if err := s.checkNameAvailable(ctx, in.Owner, in.Name, ""); err != nil {
		return project.Project{}, err
	}

	p := project.Project{
		Owner:           in.Owner,
		Name:            in.Name,
		Type:            projectType,
		Status:          project.StatusDraft,
		Address:         strings.TrimSpace(in.Address),
		City:            strings.TrimSpace(in.City),
		State:           strings.TrimSpace(in.State),
		Zip:             strings.TrimSpace(in.Zip),
		AnalysisStart:   in.AnalysisStart.UTC(),
		HoldPeriodYears: in.HoldPeriodYears,
		Notes:           strings.TrimSpace(in.Notes),
	}
	p, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return project.Project{}, err
	}
	s.log.WithField("project_id", p.ID).
		WithField("owner", p.Owner).
		WithField("project_type", string(p.Type)).
		Info("project created")
	return p, nil
}

func (s *Service) checkNameAvailable(ctx context.Context, owner, name, excludeID string) error {
	existing, err := s.store.ListProjects(ctx, storage.ProjectFilter{Owner: owner})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != excludeID && strings.EqualFold(other.Name, name) {
			return errors.Conflict("project named %q already exists", name)
		}
	}
	return nil
}

// UpdateInput carries optional field updates for a project.
type UpdateInput struct {
	Name            *string
	Status          *string
	Address         *string
	City            *string
	State           *string
	Zip             *string
	AnalysisStart   *time.Time
	HoldPeriodYears *int
	Notes           *string
}

// Update applies modifications to a project. Deleted projects cannot be
// updated until restored.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (project.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return project.Project{}, err
	}
	if p.Deleted() {
		return project.Project{}, fmt.Errorf("project %s is deleted", id)
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return project.Project{}, fmt.Errorf("name cannot be empty")
		}
		if err := s.checkNameAvailable(ctx, p.Owner, trimmed, p.ID); err != nil {
			return project.Project{}, err
		}
		p.Name = trimmed
	}
	if in.Status != nil {
		status := project.Status(strings.TrimSpace(strings.ToLower(*in.Status)))
		if !project.ValidStatus(status) {
			return project.Project{}, fmt.Errorf("unknown status %q", *in.Status)
		}
		p.Status = status
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.State != nil {
		p.State = strings.TrimSpace(*in.State)
	}
	if in.Zip != nil {
		p.Zip = strings.TrimSpace(*in.Zip)
	}
	if in.AnalysisStart != nil {
		p.AnalysisStart = in.AnalysisStart.UTC()
	}
	if in.HoldPeriodYears != nil {
		if *in.HoldPeriodYears <= 0 || *in.HoldPeriodYears > 50 {
			return project.Project{}, fmt.Errorf("hold_period_years must be between 1 and 50")
		}
		p.HoldPeriodYears = *in.HoldPeriodYears
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p, err = s.store.UpdateProject(ctx, p)
	if err != nil {
		return project.Project{}, err
	}
	s.log.WithField("project_id", p.ID).Info("project updated")
	return p, nil
}

// Get fetches a project by identifier.
func (s *Service) Get(ctx context.Context, id string) (project.Project, error) {
	return s.store.GetProject(ctx, id)
}

// List returns projects matching the filter.
func (s *Service) List(ctx context.Context, filter storage.ProjectFilter) ([]project.Project, error) {
	return s.store.ListProjects(ctx, filter)
}

// SoftDelete marks a project deleted without removing its data.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.WithField("project_id", id).Info("project soft deleted")
	return nil
}

// Restore clears a project's deletion mark.
func (s *Service) Restore(ctx context.Context, id string) (project.Project, error) {
	if err := s.store.RestoreProject(ctx, id); err != nil {
		return project.Project{}, err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return project.Project{}, err
	}
	s.log.WithField("project_id", id).Info("project restored")
	return p, nil
}

// HardDelete permanently removes a project and all dependent records.
// Only soft-deleted projects may be purged.
func (s *Service) HardDelete(ctx context.Context, id string) error {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if !p.Deleted() {
		return fmt.Errorf("project %s must be soft deleted before purge", id)
	}
	if err := s.store.HardDeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.WithField("project_id", id).
		WithField("owner", p.Owner).
		Warn("project permanently deleted")
	return nil
}

// AddParcel attaches a parcel to a project.
func (s *Service) AddParcel(ctx context.Context, projectID string, in parcel.Parcel) (parcel.Parcel, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return parcel.Parcel{}, err
	}
	if p.Deleted() {
		return parcel.Parcel{}, fmt.Errorf("project %s is deleted", projectID)
	}

	in.ProjectID = p.ID
	in.APN = strings.TrimSpace(in.APN)
	if in.APN == "" {
		return parcel.Parcel{}, fmt.Errorf("apn is required")
	}
	if in.Acreage < 0 {
		return parcel.Parcel{}, fmt.Errorf("acreage cannot be negative")
	}

	existing, err := s.store.ListParcels(ctx, p.ID)
	if err != nil {
		return parcel.Parcel{}, err
	}
	for _, other := range existing {
		if strings.EqualFold(other.APN, in.APN) {
			return parcel.Parcel{}, errors.Conflict("parcel with apn %q already exists", in.APN)
		}
	}

	created, err := s.store.CreateParcel(ctx, in)
	if err != nil {
		return parcel.Parcel{}, err
	}
	s.log.WithField("project_id", p.ID).
		WithField("parcel_id", created.ID).
		Info("parcel added")
	return created, nil
}

// UpdateParcel applies non-empty field values to a parcel.
func (s *Service) UpdateParcel(ctx context.Context, parcelID string, in parcel.Parcel) (parcel.Parcel, error) {
	existing, err := s.store.GetParcel(ctx, parcelID)
	if err != nil {
		return parcel.Parcel{}, err
	}

	if in.Acreage < 0 {
		return parcel.Parcel{}, fmt.Errorf("acreage cannot be negative")
	}
	if apn := strings.TrimSpace(in.APN); apn != "" {
		existing.APN = apn
	}
	if in.Acreage > 0 {
		existing.Acreage = in.Acreage
	}
	if in.Zoning != "" {
		existing.Zoning = strings.TrimSpace(in.Zoning)
	}
	if in.LandUse != "" {
		existing.LandUse = strings.TrimSpace(in.LandUse)
	}
	if in.EntitlementStatus != "" {
		existing.EntitlementStatus = strings.TrimSpace(in.EntitlementStatus)
	}

	return s.store.UpdateParcel(ctx, existing)
}

// ListParcels returns all parcels for a project.
func (s *Service) ListParcels(ctx context.Context, projectID string) ([]parcel.Parcel, error) {
	return s.store.ListParcels(ctx, projectID)
}

// RemoveParcel deletes a parcel.
func (s *Service) RemoveParcel(ctx context.Context, parcelID string) error {
	return s.store.DeleteParcel(ctx, parcelID)
}
