package session

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"spartan_estimator/internal/estimate/dialogue"
	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/internal/estimate/pricing"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// subscriberBuffer is the per-subscriber backlog before it is dropped.
const subscriberBuffer = 32

// Options tunes a session. The zero value replies immediately.
type Options struct {
	// TypingDelay is the pause before the greeting. Replies wait between
	// TypingDelay and 1.5x TypingDelay.
	TypingDelay time.Duration
	Clock       func() time.Time
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// Session is one visitor's conversation. All methods are safe for
// concurrent use.
type Session struct {
	id        string
	submitter Submitter
	opts      Options
	log       *logger.Logger

	mu            sync.Mutex
	record        domain.Record
	messages      []Message
	isOpen        bool
	isTyping      bool
	isSubmitting  bool
	greeted       bool
	closed        bool
	limitNotified bool
	gate          *rate.Limiter
	lastActive    time.Time
	subscribers   map[int]chan Message
	nextSub       int

	submissions sync.WaitGroup
}

// New creates a conversation that has not been opened yet.
func New(id string, submitter Submitter, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Session{
		id:          id,
		submitter:   submitter,
		opts:        opts,
		log:         opts.Logger.WithSessionID(id),
		gate:        rate.NewLimiter(rate.Every(SendInterval), 1),
		lastActive:  opts.Clock(),
		subscribers: make(map[int]chan Message),
	}
}

func (s *Session) ID() string { return s.id }

// Open shows the chat. The first call posts the greeting after the typing
// delay; later calls only mark the session open.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.isOpen = true
	s.lastActive = s.opts.Clock()
	if s.greeted {
		s.mu.Unlock()
		return nil
	}
	s.greeted = true
	s.isTyping = true
	s.mu.Unlock()

	pause(ctx, s.opts.TypingDelay)
	tr := dialogue.Greeting()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = tr.Record
	s.isTyping = false
	s.appendLocked(RoleBot, tr.Reply)
	return nil
}

// Send processes one visitor message. Rejections return an error and leave
// the transcript untouched. Messages over MaxMessageLength and sends past
// MaxTranscript are answered by the bot instead of the dialogue. A reply
// that asks for a lead submission starts it in the background; its outcome
// is appended when it settles.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.isOpen {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.isTyping || s.isSubmitting {
		s.mu.Unlock()
		return ErrBusy
	}
	now := s.opts.Clock()
	if !s.gate.AllowN(now, 1) {
		s.mu.Unlock()
		return ErrTooFast
	}
	s.lastActive = now

	text = strings.TrimSpace(text)
	if text == "" {
		s.mu.Unlock()
		return ErrEmpty
	}
	full := len(s.messages) > MaxTranscript
	if utf8.RuneCountInString(text) > MaxMessageLength && !full {
		s.appendLocked(RoleBot, dialogue.TooLongPrompt)
		s.mu.Unlock()
		return nil
	}
	if full {
		defer s.mu.Unlock()
		if s.limitNotified {
			return ErrLimitReached
		}
		s.limitNotified = true
		s.appendLocked(RoleBot, dialogue.SessionLimitPrompt)
		return nil
	}

	s.appendLocked(RoleUser, text)
	s.isTyping = true
	rec := s.record
	s.mu.Unlock()

	pause(ctx, s.replyDelay())
	tr := dialogue.Advance(rec, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isTyping = false
	s.record = tr.Record
	submit := tr.Command == dialogue.CommandSubmitLead && !s.isSubmitting
	if submit {
		s.isSubmitting = true
	}
	s.appendLocked(RoleBot, tr.Reply)
	if tr.Quoted {
		s.opts.Metrics.ObserveQuote()
	}
	if submit {
		s.submissions.Add(1)
		go s.submit(tr.Record.Snapshot())
	}
	return nil
}

func (s *Session) submit(rec domain.Record) {
	defer s.submissions.Done()

	var result domain.SubmissionResult
	if s.submitter != nil {
		result = s.submitter.Submit(context.Background(), rec)
	}
	s.opts.Metrics.ObserveSubmission(result.Success)
	s.log.LeadSubmission(s.id, result.Success, result.Message)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSubmitting = false
	s.appendLocked(RoleBot, dialogue.Outcome(rec, result))
}

// Wait blocks until every submission this session started has settled.
func (s *Session) Wait() {
	s.submissions.Wait()
}

// State returns a copy of the transcript, flags and current quote.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:           s.id,
		Messages:     append([]Message(nil), s.messages...),
		IsOpen:       s.isOpen,
		IsTyping:     s.isTyping,
		IsSubmitting: s.isSubmitting,
		Step:         s.record.Step,
		Record:       s.record.Snapshot(),
	}
	if s.record.Service != domain.ServiceNone {
		q := pricing.Calculate(s.record)
		st.Quote = &q
	}
	return st
}

// Subscribe streams every message appended from now on. The channel is
// closed when the session closes, when cancel is called, or when the
// subscriber falls subscriberBuffer messages behind.
func (s *Session) Subscribe() (<-chan Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Message, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// Close ends the conversation. Submissions in flight still settle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.isOpen = false
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// idleSince reports the last activity and whether a reply or submission is
// still pending.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.isTyping || s.isSubmitting
}

func (s *Session) appendLocked(role Role, content string) {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.opts.Clock(),
	}
	s.messages = append(s.messages, msg)
	s.opts.Metrics.ObserveMessage(string(role))

	for id, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
			delete(s.subscribers, id)
			close(ch)
			s.log.Warn("dropping slow session subscriber")
		}
	}
}

func (s *Session) replyDelay() time.Duration {
	d := s.opts.TypingDelay
	if d <= 0 {
		return 0
	}
	if jitter := d / 2; jitter > 0 {
		d += rand.N(jitter)
	}
	return d
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
