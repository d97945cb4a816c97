package session

import (
	"context"
	"sync"
	"time"

	"spartan_estimator/platform/logger"

	"github.com/google/uuid"
)

const defaultInactivityTimeout = 30 * time.Minute

// Manager owns every live session. Ending a session discards its record.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	submitter         Submitter
	opts              Options
	inactivityTimeout time.Duration
	onExpire          func(id string)
	log               *logger.Logger
}

func NewManager(submitter Submitter, inactivityTimeout time.Duration, opts Options) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = defaultInactivityTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		submitter:         submitter,
		opts:              opts,
		inactivityTimeout: inactivityTimeout,
		log:               opts.Logger,
	}
}

func (m *Manager) SetExpireHook(hook func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a new session and opens it, so the returned session
// already carries the greeting.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString(), m.submitter, m.opts)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.opts.Metrics.SessionOpened()

	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	m.log.Debug("chat session created", "session_id", s.ID())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	m.opts.Metrics.SessionClosed()
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

// Shutdown ends every session and waits for in-flight submissions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		m.opts.Metrics.SessionClosed()
	}
	for _, s := range sessions {
		s.Wait()
	}
}

// expireInactive ends sessions idle for longer than the inactivity timeout.
// A session with a reply or submission pending is never expired.
func (m *Manager) expireInactive() {
	now := m.opts.Clock()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		last, busy := s.idleSince()
		if busy || now.Sub(last) < m.inactivityTimeout {
			continue
		}
		delete(m.sessions, id)
		expired = append(expired, s)
	}
	hook := m.onExpire
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.opts.Metrics.SessionClosed()
		m.log.Debug("chat session expired", "session_id", s.ID())
		if hook != nil {
			hook(s.ID())
		}
	}
}
