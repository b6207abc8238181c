package leases

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Service administers tenant leases for a project.
type Service struct {
	projects storage.ProjectStore
	store    storage.LeaseStore
	log      *logging.Logger
}

// New creates a configured lease service.
func New(projects storage.ProjectStore, store storage.LeaseStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("leases")
	}
	return &Service{projects: projects, store: store, log: log}
}

func validate(l lease.Lease) error {
	if l.TenantName == "" {
		return fmt.Errorf("tenant_name is required")
	}
	if l.RentableSF <= 0 {
		return fmt.Errorf("rentable_sf must be positive")
	}
	if l.BaseRentPSF < 0 {
		return fmt.Errorf("base_rent_psf cannot be negative")
	}
	if l.EscalationPct < 0 {
		return fmt.Errorf("escalation_pct cannot be negative")
	}
	if l.FreeRentMonths < 0 {
		return fmt.Errorf("free_rent_months cannot be negative")
	}
	if l.Commencement.IsZero() || l.Expiration.IsZero() {
		return fmt.Errorf("commencement and expiration are required")
	}
	if !l.Expiration.After(l.Commencement) {
		return fmt.Errorf("expiration must be after commencement")
	}
	if !lease.ValidRecoveryType(l.RecoveryType) {
		return fmt.Errorf("unknown recovery type %q", l.RecoveryType)
	}
	return nil
}

// Create adds a lease to a project.
func (s *Service) Create(ctx context.Context, projectID string, l lease.Lease) (lease.Lease, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return lease.Lease{}, err
	}
	if p.Deleted() {
		return lease.Lease{}, fmt.Errorf("project %s is deleted", projectID)
	}

	l.ProjectID = p.ID
	l.TenantName = strings.TrimSpace(l.TenantName)
	l.Suite = strings.TrimSpace(l.Suite)
	if l.Status == "" {
		l.Status = lease.StatusDraft
	}
	if l.Status != lease.StatusDraft && l.Status != lease.StatusActive {
		return lease.Lease{}, fmt.Errorf("new leases must be draft or active")
	}
	if err := validate(l); err != nil {
		return lease.Lease{}, err
	}

	l.TerminationDate = nil
	l.TerminationReason = ""

	l, err = s.store.CreateLease(ctx, l)
	if err != nil {
		return lease.Lease{}, err
	}
	s.log.WithField("lease_id", l.ID).
		WithField("project_id", l.ProjectID).
		WithField("tenant", l.TenantName).
		Info("lease created")
	return l, nil
}

// UpdateInput carries optional field updates for a lease.
type UpdateInput struct {
	TenantName     *string
	Suite          *string
	RentableSF     *float64
	Commencement   *time.Time
	Expiration     *time.Time
	BaseRentPSF    *float64
	EscalationPct  *float64
	RecoveryType   *string
	FreeRentMonths *int
	Status         *string
}

// Update applies modifications to a lease. Terminated leases are frozen.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (lease.Lease, error) {
	l, err := s.store.GetLease(ctx, id)
	if err != nil {
		return lease.Lease{}, err
	}
	if l.Status == lease.StatusTerminated {
		return lease.Lease{}, fmt.Errorf("lease %s is terminated", id)
	}

	if in.TenantName != nil {
		trimmed := strings.TrimSpace(*in.TenantName)
		if trimmed == "" {
			return lease.Lease{}, fmt.Errorf("tenant_name cannot be empty")
		}
		l.TenantName = trimmed
	}
	if in.Suite != nil {
		l.Suite = strings.TrimSpace(*in.Suite)
	}
	if in.RentableSF != nil {
		l.RentableSF = *in.RentableSF
	}
	if in.Commencement != nil {
		l.Commencement = in.Commencement.UTC()
	}
	if in.Expiration != nil {
		l.Expiration = in.Expiration.UTC()
	}
	if in.BaseRentPSF != nil {
		l.BaseRentPSF = *in.BaseRentPSF
	}
	if in.EscalationPct != nil {
		l.EscalationPct = *in.EscalationPct
	}
	if in.RecoveryType != nil {
		l.RecoveryType = lease.RecoveryType(strings.TrimSpace(strings.ToLower(*in.RecoveryType)))
	}
	if in.FreeRentMonths != nil {
		l.FreeRentMonths = *in.FreeRentMonths
	}
	if in.Status != nil {
		status := lease.Status(strings.TrimSpace(strings.ToLower(*in.Status)))
		switch status {
		case lease.StatusDraft, lease.StatusActive, lease.StatusExpired:
		case lease.StatusTerminated:
			return lease.Lease{}, fmt.Errorf("use terminate to end a lease")
		default:
			return lease.Lease{}, fmt.Errorf("unknown status %q", *in.Status)
		}
		l.Status = status
	}

	if err := validate(l); err != nil {
		return lease.Lease{}, err
	}

	l, err = s.store.UpdateLease(ctx, l)
	if err != nil {
		return lease.Lease{}, err
	}
	s.log.WithField("lease_id", l.ID).Info("lease updated")
	return l, nil
}

// Terminate ends a lease effective the given date.
func (s *Service) Terminate(ctx context.Context, id string, effective time.Time, reason string) (lease.Lease, error) {
	l, err := s.store.GetLease(ctx, id)
	if err != nil {
		return lease.Lease{}, err
	}
	if l.Status == lease.StatusTerminated {
		return lease.Lease{}, fmt.Errorf("lease %s is already terminated", id)
	}
	if effective.IsZero() {
		effective = time.Now().UTC()
	}
	if effective.Before(l.Commencement) {
		return lease.Lease{}, fmt.Errorf("termination date precedes commencement")
	}

	effective = effective.UTC()
	l.Status = lease.StatusTerminated
	l.TerminationDate = &effective
	l.TerminationReason = strings.TrimSpace(reason)

	l, err = s.store.UpdateLease(ctx, l)
	if err != nil {
		return lease.Lease{}, err
	}
	s.log.WithField("lease_id", l.ID).
		WithField("project_id", l.ProjectID).
		WithField("effective", effective.Format(time.RFC3339)).
		Info("lease terminated")
	return l, nil
}

// Get fetches a lease by identifier.
func (s *Service) Get(ctx context.Context, id string) (lease.Lease, error) {
	return s.store.GetLease(ctx, id)
}

// List returns all leases for a project.
func (s *Service) List(ctx context.Context, projectID string) ([]lease.Lease, error) {
	return s.store.ListLeases(ctx, projectID)
}

// ExpiringWithin returns non-terminated leases expiring within the given
// number of months, soonest first.
func (s *Service) ExpiringWithin(ctx context.Context, projectID string, months int) ([]lease.Lease, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive")
	}
	all, err := s.store.ListLeases(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	horizon := now.AddDate(0, months, 0)
	var out []lease.Lease
	for _, l := range all {
		if l.Status == lease.StatusTerminated {
			continue
		}
		if l.Expiration.After(now) && !l.Expiration.After(horizon) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expiration.Before(out[j].Expiration) })
	return out, nil
}

// Schedule returns the monthly revenue schedule for a lease.
func (s *Service) Schedule(ctx context.Context, id string) ([]lease.MonthlyRent, error) {
	l, err := s.store.GetLease(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.Schedule(), nil
}

// Delete removes a lease.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteLease(ctx, id); err != nil {
		return err
	}
	s.log.WithField("lease_id", id).Info("lease deleted")
	return nil
}
