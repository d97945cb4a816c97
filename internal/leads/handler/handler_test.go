package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spartan_estimator/internal/leads/service"
	"spartan_estimator/internal/leads/transport"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
	"spartan_estimator/platform/ratelimit"
	"spartan_estimator/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const validBody = `{
	"name": "Leonidas",
	"phone": "(702) 555-1234",
	"address": "123 Agoge Way, Sparta",
	"estimate": {"service": "window", "stories": 2, "windowType": "both", "paneCount": null,
		"solarPanels": null, "solarScreens": null, "pressureWashSides": null, "softWashSides": null,
		"permanentLighting": false, "hardWaterSpots": true},
	"estimatedTotal": {"min": 410, "max": 525}
}`

type failingSubmitter struct{}

func (failingSubmitter) Submit(context.Context, transport.SubmitLeadRequest, string) (transport.SubmitLeadResponse, error) {
	return transport.SubmitLeadResponse{}, errors.New("bus closed")
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newRouter(svc LeadSubmitter, limiter ratelimit.Limiter, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(svc, limiter, m, logger.Discard()).RegisterRoutes(r.Group("/api"), "/leads")
	return r
}

func newDefaultRouter(m *metrics.Metrics) *gin.Engine {
	svc := service.New(validator.New(), nil, "", logger.Discard())
	return newRouter(svc, ratelimit.NewFixedWindow(5, time.Minute), m)
}

func post(r http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSubmitCreatesLead(t *testing.T) {
	m := metrics.New()
	rec := post(newDefaultRouter(m), validBody, map[string]string{"X-Forwarded-For": "203.0.113.7"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["success"] != true || out["message"] != "Lead submitted successfully" {
		t.Fatalf("unexpected body %v", out)
	}
	if id, _ := out["leadId"].(string); !strings.HasPrefix(id, "SPARTAN-") {
		t.Fatalf("unexpected lead id %v", out["leadId"])
	}
	if got := testutil.ToFloat64(m.IntakeRequests.WithLabelValues("201")); got != 1 {
		t.Fatalf("expected intake metric, got %v", got)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"phone":"7025551234","address":"123 Main St"}`, "Valid name is required"},
		{"numeric name", `{"name":42,"phone":"7025551234","address":"123 Main St"}`, "Valid name is required"},
		{"numeric phone", `{"name":"Leo","phone":7025551234,"address":"123 Main St"}`, "Valid phone number is required"},
		{"short address", `{"name":"Leo","phone":"7025551234","address":"1 a"}`, "Valid address is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newDefaultRouter(nil), tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if out := decode(t, rec); out["error"] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, out)
			}
		})
	}
}

func TestSubmitMalformedJSON(t *testing.T) {
	rec := post(newDefaultRouter(nil), `{"name": "Leo",`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if out := decode(t, rec); out["error"] != "Failed to process lead. Please call us directly." {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestSubmitUnexpectedFailure(t *testing.T) {
	r := newRouter(failingSubmitter{}, ratelimit.NewFixedWindow(5, time.Minute), nil)
	rec := post(r, validBody, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if out := decode(t, rec); out["error"] != "Failed to process lead. Please call us directly." {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestSubmitRateLimitCountsEveryRequest(t *testing.T) {
	r := newDefaultRouter(nil)
	headers := map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}

	// Malformed requests still consume the window.
	for i := 0; i < 5; i++ {
		if rec := post(r, `not json`, headers); rec.Code != http.StatusInternalServerError {
			t.Fatalf("request %d: expected 500, got %d", i+1, rec.Code)
		}
	}

	rec := post(r, validBody, headers)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if out := decode(t, rec); out["error"] != "Too many requests. Please try again later." {
		t.Fatalf("unexpected body %v", out)
	}

	other := post(r, validBody, map[string]string{"X-Real-IP": "198.51.100.2"})
	if other.Code != http.StatusCreated {
		t.Fatalf("expected a different address to pass, got %d", other.Code)
	}
}

func TestSubmitFailsOpenWhenLimiterErrors(t *testing.T) {
	svc := service.New(validator.New(), nil, "", logger.Discard())
	rec := post(newRouter(svc, brokenLimiter{}, nil), validBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestOtherMethodsAreNotAllowed(t *testing.T) {
	r := newDefaultRouter(nil)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/api/leads", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rec.Code)
		}
		if out := decode(t, rec); out["error"] != "Method not allowed" {
			t.Fatalf("%s: unexpected body %v", method, out)
		}
	}
}
