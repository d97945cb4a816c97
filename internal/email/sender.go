// Package email delivers lead notifications to the business inbox.
package email

import (
	"context"

	"spartan_estimator/internal/leads/domain"
)

// Sender delivers a notification about an accepted lead.
type Sender interface {
	SendLeadNotification(ctx context.Context, toEmail string, lead domain.Lead) error
}

// NoopSender drops every notification. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadNotification(context.Context, string, domain.Lead) error {
	return nil
}
