// Package chat provides the hosted estimate chat module.
package chat

import (
	"spartan_estimator/internal/chat/handler"
	"spartan_estimator/internal/estimate/session"
	apphttp "spartan_estimator/internal/http"
	"spartan_estimator/platform/config"
	"spartan_estimator/platform/httpkit"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/validator"

	"golang.org/x/time/rate"
)

// Config is the slice of configuration the chat module reads.
type Config interface {
	config.HTTPConfig
	GetChatRequestsPerSecond() float64
}

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule wires the chat handler to the session manager. A non-positive
// request rate disables the per-IP limiter.
func NewModule(sessions *session.Manager, val *validator.Validator, cfg Config, log *logger.Logger) *Module {
	h := handler.New(sessions, val, handler.OriginPolicy{
		AllowAll: cfg.GetCORSAllowAll(),
		Origins:  cfg.GetCORSOrigins(),
	}, log)

	var limiter *httpkit.IPRateLimiter
	if rps := cfg.GetChatRequestsPerSecond(); rps > 0 {
		burst := int(2 * rps)
		if burst < 1 {
			burst = 1
		}
		limiter = httpkit.NewIPRateLimiter(rate.Limit(rps), burst, log)
	}

	return &Module{handler: h, limiter: limiter}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts the session API under /api/v1/chat/sessions.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/chat/sessions")
	if m.limiter != nil {
		group.Use(m.limiter.RateLimit())
	}
	m.handler.RegisterRoutes(group)
}
