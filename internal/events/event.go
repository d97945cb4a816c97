// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	leaddomain "spartan_estimator/internal/leads/domain"
	"spartan_estimator/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Intake Events
// =============================================================================

// LeadSubmitted is published once a lead passed validation and sanitization.
// The intake response does not wait for its subscribers.
type LeadSubmitted struct {
	BaseEvent
	Lead leaddomain.Lead `json:"lead"`
}

func (e LeadSubmitted) EventName() string { return "leads.lead.submitted" }
