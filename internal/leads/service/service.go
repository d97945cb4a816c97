// Package service validates, sanitizes and accepts leads from the intake endpoint.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spartan_estimator/internal/events"
	"spartan_estimator/internal/leads/domain"
	"spartan_estimator/internal/leads/transport"
	"spartan_estimator/platform/apperr"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/phone"
	"spartan_estimator/platform/sanitize"
	"spartan_estimator/platform/validator"

	"github.com/google/uuid"
)

const (
	MessageAccepted = "Lead submitted successfully"

	errInvalidName    = "Valid name is required"
	errInvalidPhone   = "Valid phone number is required"
	errInvalidAddress = "Valid address is required"

	maxNameLength    = 100
	maxAddressLength = 300

	defaultSource = "leonidas-chat"
	leadIDPrefix  = "SPARTAN-"
)

// fieldErrors maps a failed request field to its client message.
var fieldErrors = map[string]string{
	"Name":    errInvalidName,
	"Phone":   errInvalidPhone,
	"Address": errInvalidAddress,
}

// Service accepts leads and announces them on the event bus.
type Service struct {
	val    *validator.Validator
	bus    events.Bus
	source string
	now    func() time.Time
	log    *logger.Logger
}

// New creates a lead intake service. An empty source uses "leonidas-chat".
func New(val *validator.Validator, bus events.Bus, source string, log *logger.Logger) *Service {
	if strings.TrimSpace(source) == "" {
		source = defaultSource
	}
	return &Service{
		val:    val,
		bus:    bus,
		source: source,
		now:    time.Now,
		log:    log,
	}
}

// Submit validates req, builds the sanitized lead and publishes LeadSubmitted.
// Fields are checked in order name, phone, address; the first failure wins.
func (s *Service) Submit(ctx context.Context, req transport.SubmitLeadRequest, clientIP string) (transport.SubmitLeadResponse, error) {
	if err := s.val.Struct(req); err != nil {
		field, ok := validator.FirstFailedField(err)
		if !ok {
			return transport.SubmitLeadResponse{}, apperr.Wrap(apperr.KindInternal, "validate lead", err).WithOp("leads.Submit")
		}
		msg, known := fieldErrors[field]
		if !known {
			return transport.SubmitLeadResponse{}, apperr.Internal(fmt.Sprintf("unexpected validation failure on %s", field)).WithOp("leads.Submit")
		}
		return transport.SubmitLeadResponse{}, apperr.Validation(msg)
	}

	lead := s.buildLead(req, clientIP)

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadSubmitted{
			BaseEvent: events.NewBaseEvent(),
			Lead:      lead,
		})
	}
	if s.log != nil {
		s.log.WithContext(ctx).LeadAccepted(lead.ID, lead.ServiceLabel(), lead.EstimatedTotal.Min, lead.EstimatedTotal.Max)
	}

	return transport.SubmitLeadResponse{
		Success: true,
		Message: MessageAccepted,
		LeadID:  lead.ID,
	}, nil
}

func (s *Service) buildLead(req transport.SubmitLeadRequest, clientIP string) domain.Lead {
	now := s.now().UTC()
	digits := sanitize.Truncate(phone.Digits(req.Phone), phone.MaxDigits)

	lead := domain.Lead{
		ID:             newLeadID(now),
		Name:           sanitize.Text(req.Name, maxNameLength),
		Phone:          digits,
		Address:        sanitize.Text(req.Address, maxAddressLength),
		Estimate:       req.Estimate,
		EstimatedTotal: req.EstimatedTotal,
		SubmittedAt:    now,
		Source:         s.source,
	}
	if e164 := phone.NormalizeE164(digits); strings.HasPrefix(e164, "+") {
		lead.PhoneE164 = e164
	}
	if clientIP != "" && clientIP != domain.UnknownIP {
		lead.IP = clientIP
		lead.IPHash = domain.HashIP(clientIP)
	}
	return lead
}

// newLeadID combines the acceptance time with a random suffix so two leads
// in the same millisecond still differ.
func newLeadID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s%d-%s", leadIDPrefix, now.UnixMilli(), suffix)
}
