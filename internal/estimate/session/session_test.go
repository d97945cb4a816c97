package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"spartan_estimator/internal/estimate/dialogue"
	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSubmitter settles with result once release is closed.
type fakeSubmitter struct {
	mu      sync.Mutex
	records []domain.Record
	result  domain.SubmissionResult
	release chan struct{}
}

func newFakeSubmitter(result domain.SubmissionResult) *fakeSubmitter {
	return &fakeSubmitter{result: result, release: make(chan struct{})}
}

func (f *fakeSubmitter) Submit(_ context.Context, r domain.Record) domain.SubmissionResult {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	<-f.release
	return f.result
}

func (f *fakeSubmitter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func openSession(t *testing.T, sub Submitter, m *metrics.Metrics) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := New("test-session", sub, Options{Clock: clock.Now, Metrics: m})
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	return s, clock
}

// send advances the clock past the send gate before sending.
func send(t *testing.T, s *Session, clock *fakeClock, text string) {
	t.Helper()
	clock.Advance(time.Second)
	if err := s.Send(context.Background(), text); err != nil {
		t.Fatalf("send %q: unexpected error %v", text, err)
	}
}

func lastMessage(s *Session) Message {
	msgs := s.State().Messages
	return msgs[len(msgs)-1]
}

func TestOpenGreetsOnce(t *testing.T) {
	s, _ := openSession(t, nil, nil)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("expected reopen to succeed, got %v", err)
	}

	st := s.State()
	if len(st.Messages) != 1 || st.Messages[0].Role != RoleBot {
		t.Fatalf("expected exactly one greeting, got %+v", st.Messages)
	}
	if !strings.HasPrefix(st.Messages[0].Content, "**LEONIDAS here, warrior.**") {
		t.Fatalf("unexpected greeting %q", st.Messages[0].Content)
	}
	if !st.IsOpen || st.Step != domain.StepService || st.Quote != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSendRequiresOpen(t *testing.T) {
	s := New("closed", nil, Options{})
	if err := s.Send(context.Background(), "1"); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	s.Close()
	if err := s.Open(context.Background()); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSendGate(t *testing.T) {
	s, clock := openSession(t, nil, nil)

	send(t, s, clock, "1")

	clock.Advance(100 * time.Millisecond)
	if err := s.Send(context.Background(), "2"); err != ErrTooFast {
		t.Fatalf("expected ErrTooFast, got %v", err)
	}

	clock.Advance(250 * time.Millisecond)
	if err := s.Send(context.Background(), "   "); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}

	// The empty send still counted against the interval.
	clock.Advance(100 * time.Millisecond)
	if err := s.Send(context.Background(), "2"); err != ErrTooFast {
		t.Fatalf("expected ErrTooFast after empty send, got %v", err)
	}

	send(t, s, clock, "2")
	st := s.State()
	if st.Step != domain.StepWindowType || len(st.Messages) != 5 {
		t.Fatalf("expected two exchanges after the greeting, got step %d with %d messages", st.Step, len(st.Messages))
	}
	if !IsRejection(ErrTooFast) || IsRejection(ErrClosed) {
		t.Fatalf("unexpected rejection classification")
	}
}

func TestTooLongMessage(t *testing.T) {
	s, clock := openSession(t, nil, nil)

	send(t, s, clock, strings.Repeat("a", MaxMessageLength+1))
	st := s.State()
	if len(st.Messages) != 2 || st.Messages[1].Role != RoleBot || st.Messages[1].Content != dialogue.TooLongPrompt {
		t.Fatalf("expected a bot-only too long reply, got %+v", st.Messages)
	}
	if st.Step != domain.StepService {
		t.Fatalf("expected record untouched, got step %d", st.Step)
	}

	send(t, s, clock, strings.Repeat("é", MaxMessageLength))
	if lastMessage(s).Content == dialogue.TooLongPrompt {
		t.Fatalf("expected length to count characters, not bytes")
	}
}

func TestSessionLimit(t *testing.T) {
	s, clock := openSession(t, nil, nil)

	// One greeting plus 50 exchanges puts the transcript at 101 messages.
	for i := 0; i < 50; i++ {
		send(t, s, clock, "x")
	}
	if n := len(s.State().Messages); n != 101 {
		t.Fatalf("expected 101 messages, got %d", n)
	}

	send(t, s, clock, "1")
	if got := lastMessage(s); got.Role != RoleBot || got.Content != dialogue.SessionLimitPrompt {
		t.Fatalf("expected session limit reply, got %+v", got)
	}

	clock.Advance(time.Second)
	if err := s.Send(context.Background(), strings.Repeat("a", 600)); err != ErrLimitReached {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if n := len(s.State().Messages); n != 102 {
		t.Fatalf("expected transcript to stop growing, got %d", n)
	}
}

func TestSubmissionRunsOnceInBackground(t *testing.T) {
	m := metrics.New()
	sub := newFakeSubmitter(domain.SubmissionResult{Success: true, Message: "Lead submitted successfully"})
	s, clock := openSession(t, sub, m)

	for _, in := range []string{"5", "Leonidas", "702-555-1234", "123 Agoge Way, Sparta"} {
		send(t, s, clock, in)
	}

	st := s.State()
	if !st.IsSubmitting || st.Step != domain.StepSubmitted {
		t.Fatalf("expected submission in flight, got %+v", st)
	}
	if got := lastMessage(s); got.Content != dialogue.SubmittingPrompt {
		t.Fatalf("expected submitting prompt, got %q", got.Content)
	}

	clock.Advance(time.Second)
	if err := s.Send(context.Background(), "hello?"); err != ErrBusy {
		t.Fatalf("expected ErrBusy while submitting, got %v", err)
	}

	close(sub.release)
	s.Wait()

	if sub.calls() != 1 {
		t.Fatalf("expected exactly one submission, got %d", sub.calls())
	}
	rec := sub.records[0]
	if domain.Deref(rec.Name) != "Leonidas" || domain.Deref(rec.Phone) != "7025551234" || !rec.PermanentLighting {
		t.Fatalf("unexpected submitted record %+v", rec)
	}

	st = s.State()
	if st.IsSubmitting {
		t.Fatalf("expected submission to settle")
	}
	if got := lastMessage(s); !strings.HasPrefix(got.Content, "**MISSION COMPLETE!**") {
		t.Fatalf("expected success outcome, got %q", got.Content)
	}
	if got := testutil.ToFloat64(m.LeadSubmissions.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected one successful submission metric, got %v", got)
	}

	// The closing step answers without submitting again.
	send(t, s, clock, "thanks")
	if sub.calls() != 1 || s.State().IsSubmitting {
		t.Fatalf("expected no second submission")
	}
}

func TestSubmissionFailureOutcome(t *testing.T) {
	sub := newFakeSubmitter(domain.SubmissionResult{Message: "Network error. Please try again."})
	close(sub.release)
	s, clock := openSession(t, sub, nil)

	for _, in := range []string{"3", "2", "Leonidas", "7025551234", "123 Agoge Way, Sparta"} {
		send(t, s, clock, in)
	}
	s.Wait()

	got := lastMessage(s).Content
	if !strings.HasPrefix(got, "**We encountered an issue saving your information.**") {
		t.Fatalf("expected failure outcome, got %q", got)
	}
	if !strings.Contains(got, "Pressure Washing (2 sides): $200") {
		t.Fatalf("expected the quote in the failure outcome:\n%s", got)
	}
}

func TestStateCarriesQuote(t *testing.T) {
	m := metrics.New()
	s, clock := openSession(t, nil, m)

	send(t, s, clock, "4")
	send(t, s, clock, "2")

	st := s.State()
	if st.Quote == nil || st.Quote.Min != 400 || st.Quote.Max != 400 {
		t.Fatalf("unexpected quote %+v", st.Quote)
	}
	if got := testutil.ToFloat64(m.QuotesRendered); got != 1 {
		t.Fatalf("expected one rendered quote, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChatMessages.WithLabelValues("user")); got != 2 {
		t.Fatalf("expected two user messages, got %v", got)
	}

	// State is a copy.
	st.Messages[0].Content = "changed"
	if s.State().Messages[0].Content == "changed" {
		t.Fatalf("expected State to copy the transcript")
	}
}

func TestSubscribe(t *testing.T) {
	s, clock := openSession(t, nil, nil)
	ch, cancel := s.Subscribe()

	send(t, s, clock, "1")

	first, second := <-ch, <-ch
	if first.Role != RoleUser || first.Content != "1" || second.Role != RoleBot {
		t.Fatalf("unexpected streamed messages %+v %+v", first, second)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}

	other, _ := s.Subscribe()
	s.Close()
	if _, ok := <-other; ok {
		t.Fatalf("expected channel closed after session close")
	}
	if err := s.Send(context.Background(), "2"); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	s, clock := openSession(t, nil, nil)
	ch, _ := s.Subscribe()

	for i := 0; i < subscriberBuffer; i++ {
		send(t, s, clock, "x")
	}

	n := 0
	for range ch {
		n++
	}
	if n != subscriberBuffer {
		t.Fatalf("expected %d buffered messages before the drop, got %d", subscriberBuffer, n)
	}
}

func TestTypingDelayWaitsForContext(t *testing.T) {
	s := New("slow", nil, Options{TypingDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Open(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected open to succeed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a cancelled context to cut the typing delay short")
	}
	if len(s.State().Messages) != 1 {
		t.Fatalf("expected the greeting to be posted")
	}
}
