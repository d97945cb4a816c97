// Package handler serves the public lead intake endpoint.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"spartan_estimator/internal/leads/transport"
	"spartan_estimator/platform/apperr"
	"spartan_estimator/platform/httpkit"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
	"spartan_estimator/platform/ratelimit"

	"github.com/gin-gonic/gin"
)

const (
	errTooManyRequests  = "Too many requests. Please try again later."
	errProcessingFailed = "Failed to process lead. Please call us directly."
	errMethodNotAllowed = "Method not allowed"

	// maxBodyBytes bounds the request body; longer bodies fail to decode.
	maxBodyBytes = 64 << 10
)

// LeadSubmitter accepts a decoded intake request.
type LeadSubmitter interface {
	Submit(ctx context.Context, req transport.SubmitLeadRequest, clientIP string) (transport.SubmitLeadResponse, error)
}

// Handler handles lead intake HTTP requests.
type Handler struct {
	svc     LeadSubmitter
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New creates a new lead intake handler.
func New(svc LeadSubmitter, limiter ratelimit.Limiter, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{svc: svc, limiter: limiter, metrics: m, log: log}
}

// RegisterRoutes mounts POST on path and answers every other method with 405.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, path string) {
	rg.POST(path, h.Submit)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rg.Handle(method, path, h.MethodNotAllowed)
	}
}

// Submit accepts a lead.
// POST /api/leads
// The rate limit is checked before the body is read, so every request from
// an address counts toward its window.
func (h *Handler) Submit(c *gin.Context) {
	defer func() { h.metrics.ObserveIntake(c.Writer.Status()) }()

	ctx := c.Request.Context()
	clientIP := httpkit.ClientIP(c.Request)

	allowed, err := h.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Fail open while the limiter is unreachable.
		h.log.WithContext(ctx).Error("rate limiter unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		h.log.WithContext(ctx).RateLimitExceeded(clientIP, c.Request.URL.Path)
		httpkit.HandleError(c, apperr.TooManyRequests(errTooManyRequests))
		return
	}

	var req transport.SubmitLeadRequest
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.log.WithContext(ctx).HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, clientIP)
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, errProcessingFailed, err))
		return
	}

	resp, err := h.svc.Submit(ctx, req, clientIP)
	if err != nil {
		if !apperr.Is(err, apperr.KindValidation) {
			h.log.WithContext(ctx).HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, clientIP)
			err = apperr.Wrap(apperr.KindInternal, errProcessingFailed, err)
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, resp)
}

// MethodNotAllowed answers unsupported methods on the intake path.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	httpkit.HandleError(c, apperr.MethodNotAllowed(errMethodNotAllowed))
}
