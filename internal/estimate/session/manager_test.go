package session

import (
	"context"
	"testing"
	"time"

	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := metrics.New()
	mgr := NewManager(nil, time.Minute, Options{Metrics: m})

	s, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.ID() == "" || len(s.State().Messages) != 1 {
		t.Fatalf("expected an opened session with a greeting, got %+v", s.State())
	}

	got, err := mgr.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if testutil.ToFloat64(m.ActiveSessions) != 1 || mgr.Count() != 1 {
		t.Fatalf("expected one active session")
	}

	if err := mgr.End(s.ID()); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := mgr.Get(s.ID()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after End, got %v", err)
	}
	if err := mgr.End(s.ID()); err != ErrNotFound {
		t.Fatalf("expected second End to fail, got %v", err)
	}
	if testutil.ToFloat64(m.ActiveSessions) != 0 {
		t.Fatalf("expected no active sessions")
	}
	if err := s.Send(context.Background(), "1"); err != ErrClosed {
		t.Fatalf("expected ended session to refuse sends, got %v", err)
	}
}

func TestManagerExpiresInactive(t *testing.T) {
	clock := newFakeClock()
	mgr := NewManager(nil, time.Minute, Options{Clock: clock.Now})

	idle, _ := mgr.Create(context.Background())
	clock.Advance(30 * time.Second)
	active, _ := mgr.Create(context.Background())

	var expired []string
	mgr.SetExpireHook(func(id string) { expired = append(expired, id) })

	clock.Advance(45 * time.Second)
	mgr.expireInactive()

	if len(expired) != 1 || expired[0] != idle.ID() {
		t.Fatalf("expected only the idle session to expire, got %v", expired)
	}
	if _, err := mgr.Get(active.ID()); err != nil {
		t.Fatalf("expected active session to survive, got %v", err)
	}
}

func TestManagerKeepsSubmittingSessions(t *testing.T) {
	clock := newFakeClock()
	sub := newFakeSubmitter(domain.SubmissionResult{Success: true, Message: "Lead submitted successfully"})
	mgr := NewManager(sub, time.Minute, Options{Clock: clock.Now})

	s, _ := mgr.Create(context.Background())
	for _, in := range []string{"5", "Leonidas", "7025551234", "123 Agoge Way"} {
		send(t, s, clock, in)
	}

	clock.Advance(time.Hour)
	mgr.expireInactive()
	if _, err := mgr.Get(s.ID()); err != nil {
		t.Fatalf("expected submitting session to be kept, got %v", err)
	}

	close(sub.release)
	mgr.Shutdown()
	if mgr.Count() != 0 {
		t.Fatalf("expected shutdown to end every session")
	}
	if s.State().IsSubmitting {
		t.Fatalf("expected shutdown to wait for the submission")
	}
}

func TestManagerJanitorStopsWithContext(t *testing.T) {
	mgr := NewManager(nil, 10*time.Millisecond, Options{})
	s, _ := mgr.Create(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.StartJanitor(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := mgr.Get(s.ID()); err == ErrNotFound {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected janitor to expire the idle session")
}
