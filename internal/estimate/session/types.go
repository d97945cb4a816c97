// Package session owns live estimate conversations. A Session applies the
// widget's send rules around the pure dialogue engine and runs the lead
// submission the engine asks for.
package session

import (
	"context"
	"errors"
	"time"

	"spartan_estimator/internal/estimate/domain"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry. Transcripts are append-only.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	// MaxMessageLength is measured in characters after trimming.
	MaxMessageLength = 500
	// MaxTranscript is the transcript length past which sends are refused.
	MaxTranscript = 100
	// SendInterval is the minimum spacing between accepted sends.
	SendInterval = 300 * time.Millisecond
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrClosed       = errors.New("session closed")
	ErrNotOpen      = errors.New("session not open")
	ErrBusy         = errors.New("reply or submission in progress")
	ErrTooFast      = errors.New("messages sent too quickly")
	ErrEmpty        = errors.New("message is empty")
	ErrLimitReached = errors.New("session limit reached")
)

// IsRejection reports whether err is a send the gate turned away.
func IsRejection(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrTooFast) ||
		errors.Is(err, ErrEmpty) || errors.Is(err, ErrLimitReached) || errors.Is(err, ErrNotOpen)
}

// Submitter hands a finished record to the lead intake endpoint. It always
// settles with a result; failures are results, not errors.
type Submitter interface {
	Submit(ctx context.Context, r domain.Record) domain.SubmissionResult
}

// State is a point-in-time view of a session.
type State struct {
	ID           string        `json:"id"`
	Messages     []Message     `json:"messages"`
	IsOpen       bool          `json:"isOpen"`
	IsTyping     bool          `json:"isTyping"`
	IsSubmitting bool          `json:"isSubmitting"`
	Step         domain.Step   `json:"step"`
	Record       domain.Record `json:"record"`
	Quote        *domain.Quote `json:"quote,omitempty"`
}
