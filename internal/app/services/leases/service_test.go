package leases

import (
	"context"
	"testing"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/services/projects"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
)

func newFixture(t *testing.T) (*Service, string) {
	t.Helper()
	store := memory.New()
	projSvc := projects.New(store, nil)
	p, err := projSvc.Create(context.Background(), projects.CreateInput{Owner: "alice", Name: "Maple Court", Type: "multifamily"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return New(store, store, nil), p.ID
}

func testLease() lease.Lease {
	return lease.Lease{
		TenantName:   "Acme Dental",
		Suite:        "120",
		RentableSF:   2400,
		BaseRentPSF:  28,
		RecoveryType: lease.RecoveryNNN,
		Commencement: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Expiration:   time.Date(2031, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	svc, projectID := newFixture(t)

	l, err := svc.Create(context.Background(), projectID, testLease())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.ID == "" || l.ProjectID != projectID {
		t.Fatalf("lease not linked: %+v", l)
	}
	if l.Status != lease.StatusDraft {
		t.Fatalf("status = %q, want draft", l.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	noTenant := testLease()
	noTenant.TenantName = "  "
	if _, err := svc.Create(ctx, projectID, noTenant); err == nil {
		t.Fatalf("expected error for missing tenant")
	}

	badTerm := testLease()
	badTerm.Expiration = badTerm.Commencement
	if _, err := svc.Create(ctx, projectID, badTerm); err == nil {
		t.Fatalf("expected error for zero-length term")
	}

	badRecovery := testLease()
	badRecovery.RecoveryType = "triple_secret"
	if _, err := svc.Create(ctx, projectID, badRecovery); err == nil {
		t.Fatalf("expected error for unknown recovery type")
	}

	terminated := testLease()
	terminated.Status = lease.StatusTerminated
	if _, err := svc.Create(ctx, projectID, terminated); err == nil {
		t.Fatalf("expected error creating terminated lease")
	}

	if _, err := svc.Create(ctx, "no-such-project", testLease()); err == nil {
		t.Fatalf("expected error for unknown project")
	}
}

func TestUpdate(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, projectID, testLease())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rent := 31.5
	status := "active"
	updated, err := svc.Update(ctx, l.ID, UpdateInput{BaseRentPSF: &rent, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BaseRentPSF != 31.5 || updated.Status != lease.StatusActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	// Status changes to terminated go through Terminate, not Update.
	term := "terminated"
	if _, err := svc.Update(ctx, l.ID, UpdateInput{Status: &term}); err == nil {
		t.Fatalf("expected error changing status to terminated via update")
	}
}

func TestTerminate(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, projectID, testLease())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	effective := time.Date(2028, time.June, 30, 0, 0, 0, 0, time.UTC)
	terminated, err := svc.Terminate(ctx, l.ID, effective, "tenant default")
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if terminated.Status != lease.StatusTerminated {
		t.Fatalf("status = %q, want terminated", terminated.Status)
	}
	if terminated.TerminationDate == nil || !terminated.TerminationDate.Equal(effective) {
		t.Fatalf("termination date = %v", terminated.TerminationDate)
	}
	if terminated.TerminationReason != "tenant default" {
		t.Fatalf("reason = %q", terminated.TerminationReason)
	}

	// Terminated leases are frozen.
	rent := 40.0
	if _, err := svc.Update(ctx, l.ID, UpdateInput{BaseRentPSF: &rent}); err == nil {
		t.Fatalf("expected update of terminated lease to fail")
	}
	if _, err := svc.Terminate(ctx, l.ID, effective, "again"); err == nil {
		t.Fatalf("expected double termination to fail")
	}
}

func TestTerminateBeforeCommencement(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, projectID, testLease())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	early := l.Commencement.AddDate(0, -1, 0)
	if _, err := svc.Terminate(ctx, l.ID, early, ""); err == nil {
		t.Fatalf("expected error for termination before commencement")
	}
}

func TestExpiringWithin(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()

	soon := testLease()
	soon.TenantName = "Soon"
	soon.Commencement = now.AddDate(-2, 0, 0)
	soon.Expiration = now.AddDate(0, 3, 0)
	if _, err := svc.Create(ctx, projectID, soon); err != nil {
		t.Fatalf("create soon: %v", err)
	}

	later := testLease()
	later.TenantName = "Later"
	later.Commencement = now.AddDate(-1, 0, 0)
	later.Expiration = now.AddDate(3, 0, 0)
	if _, err := svc.Create(ctx, projectID, later); err != nil {
		t.Fatalf("create later: %v", err)
	}

	list, err := svc.ExpiringWithin(ctx, projectID, 6)
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(list) != 1 || list[0].TenantName != "Soon" {
		t.Fatalf("expected only the near-term lease, got %d", len(list))
	}

	if _, err := svc.ExpiringWithin(ctx, projectID, 0); err == nil {
		t.Fatalf("expected error for non-positive horizon")
	}
}

func TestSchedule(t *testing.T) {
	svc, projectID := newFixture(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, projectID, testLease())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sched, err := svc.Schedule(ctx, l.ID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(sched) != 60 {
		t.Fatalf("schedule months = %d, want 60", len(sched))
	}
}
