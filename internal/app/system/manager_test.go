package system

import (
	"context"
	"fmt"
	"testing"
)

type recordedService struct {
	name     string
	events   *[]string
	startErr error
}

func (s *recordedService) Name() string { return s.name }

func (s *recordedService) Start(context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	*s.events = append(*s.events, "start:"+s.name)
	return nil
}

func (s *recordedService) Stop(context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}

func TestManagerStartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordedService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i, e := range want {
		if events[i] != e {
			t.Fatalf("events[%d] = %q, want %q (all: %v)", i, events[i], e, events)
		}
	}
}

func TestManagerStartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager()
	_ = m.Register(&recordedService{name: "a", events: &events})
	_ = m.Register(&recordedService{name: "b", events: &events, startErr: fmt.Errorf("boom")})

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if len(events) != 2 || events[0] != "start:a" || events[1] != "stop:a" {
		t.Fatalf("rollback events = %v", events)
	}
}

func TestManagerRegisterRules(t *testing.T) {
	m := NewManager()
	if err := m.Register(nil); err == nil {
		t.Fatal("expected error for nil service")
	}
	if err := m.Register(NoopService{ServiceName: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "x"}); err == nil {
		t.Fatal("expected error for duplicate name")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "late"}); err == nil {
		t.Fatal("expected error registering after start")
	}
}
