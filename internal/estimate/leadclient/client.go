// Package leadclient hands a finished estimate to the lead intake endpoint.
package leadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/internal/estimate/pricing"
	leaddomain "spartan_estimator/internal/leads/domain"
	"spartan_estimator/internal/leads/transport"
	"spartan_estimator/platform/logger"
)

const (
	MessageSubmitted    = "Lead submitted successfully"
	MessageFailed       = "Failed to submit"
	MessageNetworkError = "Network error. Please try again."

	defaultTimeout = 10 * time.Second
)

// Result is the settled outcome of one submission.
type Result = domain.SubmissionResult

// Client posts leads to the intake endpoint. One attempt per submission.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client for endpoint. A zero timeout uses 10 seconds.
func New(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Submit posts the record and its quote. It never returns an error: every
// failure is folded into an unsuccessful Result.
func (c *Client) Submit(ctx context.Context, r domain.Record) Result {
	if err := c.post(ctx, NewRequest(r)); err != nil {
		var rejected *rejectedError
		if errors.As(err, &rejected) {
			return Result{Success: false, Message: rejected.message}
		}
		c.log.WithContext(ctx).Warn("lead submission failed", "error", err)
		return Result{Success: false, Message: MessageNetworkError}
	}
	return Result{Success: true, Message: MessageSubmitted}
}

// rejectedError is a non-2xx answer that carried a JSON body.
type rejectedError struct {
	status  int
	message string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("lead rejected with status %d: %s", e.status, e.message)
}

func (c *Client) post(ctx context.Context, payload transport.SubmitLeadRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create lead request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lead request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var data struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("decode lead error response (status %d): %w", resp.StatusCode, err)
	}
	if data.Error == "" {
		return &rejectedError{status: resp.StatusCode, message: MessageFailed}
	}
	return &rejectedError{status: resp.StatusCode, message: data.Error}
}

// NewRequest builds the intake payload from a record snapshot. Unanswered
// questions serialize as null.
func NewRequest(rec domain.Record) transport.SubmitLeadRequest {
	r := rec.Snapshot()
	quote := pricing.Calculate(r)
	details := leaddomain.EstimateDetails{
		Stories:           r.Stories,
		PaneCount:         r.PaneCount,
		SolarPanels:       r.SolarPanels,
		SolarScreens:      r.SolarScreens,
		PressureWashSides: r.PressureWashSides,
		SoftWashSides:     r.SoftWashSides,
		PermanentLighting: r.PermanentLighting,
		HardWaterSpots:    r.HardWaterSpots,
	}
	if r.Service != domain.ServiceNone {
		details.Service = domain.StringPtr(string(r.Service))
	}
	if r.WindowType != domain.WindowTypeNone {
		details.WindowType = domain.StringPtr(string(r.WindowType))
	}

	return transport.SubmitLeadRequest{
		Name:           domain.Deref(r.Name),
		Phone:          domain.Deref(r.Phone),
		Address:        domain.Deref(r.Address),
		Estimate:       details,
		EstimatedTotal: leaddomain.EstimatedTotal{Min: quote.Min, Max: quote.Max},
	}
}
