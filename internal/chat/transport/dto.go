// Package transport defines the chat API's request and response bodies.
package transport

import "spartan_estimator/internal/estimate/session"

// MaxContentBytes bounds a single message body. Messages that fit but run
// past the chat's character limit are answered by the bot instead.
const MaxContentBytes = 8192

// SendMessageRequest carries one visitor message.
type SendMessageRequest struct {
	Content string `json:"content" validate:"max=8192"`
}

// SessionResponse is the transcript and flags of one session.
type SessionResponse = session.State

// Frame types exchanged over the WebSocket.
const (
	FrameMessage = "message"
	FrameState   = "state"
	FrameError   = "error"
)

// ClientFrame is an inbound WebSocket frame.
type ClientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ServerFrame is an outbound WebSocket frame. Exactly one payload field is
// set, matching Type.
type ServerFrame struct {
	Type    string           `json:"type"`
	Message *session.Message `json:"message,omitempty"`
	State   *session.State   `json:"state,omitempty"`
	Error   string           `json:"error,omitempty"`
}
