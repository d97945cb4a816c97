// Package leads provides the lead intake bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"spartan_estimator/internal/events"
	apphttp "spartan_estimator/internal/http"
	"spartan_estimator/internal/leads/handler"
	"spartan_estimator/internal/leads/service"
	"spartan_estimator/platform/config"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
	"spartan_estimator/platform/ratelimit"
	"spartan_estimator/platform/validator"
)

// intakePath is relative to the /api group.
const intakePath = "/leads"

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// Sinks subscribe to LeadSubmitted separately; see the sink package.
func NewModule(eventBus events.Bus, limiter ratelimit.Limiter, val *validator.Validator, cfg config.IntakeConfig, m *metrics.Metrics, log *logger.Logger) *Module {
	svc := service.New(val, eventBus, cfg.GetLeadSource(), log)
	return &Module{
		handler: handler.New(svc, limiter, m, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the intake service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts POST /api/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.API, intakePath)
}
