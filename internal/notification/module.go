// Package notification emails the business inbox when a lead comes in.
// It subscribes to lead events so the intake path never waits on SMTP.
package notification

import (
	"context"

	"spartan_estimator/internal/email"
	"spartan_estimator/internal/events"
	"spartan_estimator/internal/leads/domain"
	"spartan_estimator/internal/scheduler"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
)

const sinkName = "email"

// Config is the slice of configuration the module reads.
type Config interface {
	GetNotifyAddress() string
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender  email.Sender
	queue   scheduler.LeadNotificationQueue
	cfg     Config
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New creates the notification module. Without a queue, emails go out inline
// from the event handler.
func New(sender email.Sender, cfg Config, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, cfg: cfg, log: log}
}

// SetQueue defers delivery to the scheduler worker.
func (m *Module) SetQueue(queue scheduler.LeadNotificationQueue) {
	m.queue = queue
}

// SetMetrics records delivery failures.
func (m *Module) SetMetrics(mt *metrics.Metrics) {
	m.metrics = mt
}

func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(ctx, e.Lead)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadSubmitted(ctx context.Context, lead domain.Lead) error {
	to := m.cfg.GetNotifyAddress()
	if to == "" {
		return nil
	}

	var err error
	if m.queue != nil {
		err = m.queue.EnqueueLeadNotification(ctx, scheduler.LeadNotificationPayload{To: to, Lead: lead})
	} else {
		err = m.sender.SendLeadNotification(ctx, to, lead)
	}
	if err != nil {
		m.log.SinkError(sinkName, lead.ID, err)
		m.metrics.ObserveSinkFailure(sinkName)
		return err
	}
	return nil
}
