package leadclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spartan_estimator/internal/estimate/domain"
)

func submittedRecord() domain.Record {
	return domain.Record{
		Service:        domain.ServiceWindow,
		Stories:        domain.IntPtr(2),
		WindowType:     domain.WindowTypeBoth,
		HardWaterSpots: true,
		Name:           domain.StringPtr("Leonidas"),
		Phone:          domain.StringPtr("7025551234"),
		Address:        domain.StringPtr("123 Agoge Way, Sparta"),
		Step:           domain.StepSubmitted,
	}
}

func TestSubmitSendsContractAndSucceeds(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"Lead submitted successfully","leadId":"SPARTAN-1"}`))
	}))
	defer srv.Close()

	res := New(srv.URL, time.Second, nil).Submit(context.Background(), submittedRecord())
	if !res.Success || res.Message != MessageSubmitted {
		t.Fatalf("unexpected result %+v", res)
	}

	if got["name"] != "Leonidas" || got["phone"] != "7025551234" || got["address"] != "123 Agoge Way, Sparta" {
		t.Fatalf("unexpected contact fields %v", got)
	}
	estimate := got["estimate"].(map[string]any)
	if estimate["service"] != "window" || estimate["windowType"] != "both" || estimate["stories"] != float64(2) {
		t.Fatalf("unexpected estimate %v", estimate)
	}
	for _, key := range []string{"paneCount", "solarPanels", "solarScreens", "pressureWashSides", "softWashSides"} {
		v, ok := estimate[key]
		if !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v (present=%v)", key, v, ok)
		}
	}
	if estimate["hardWaterSpots"] != true || estimate["permanentLighting"] != false {
		t.Fatalf("unexpected flags %v", estimate)
	}
	total := got["estimatedTotal"].(map[string]any)
	if total["min"] != float64(410) || total["max"] != float64(525) {
		t.Fatalf("unexpected total %v", total)
	}
}

func TestSubmitNullsUnsetServiceAndWindowType(t *testing.T) {
	req := NewRequest(domain.Record{Service: domain.ServiceLighting, PermanentLighting: true})
	if req.Estimate.Service == nil || *req.Estimate.Service != "lighting" {
		t.Fatalf("expected lighting service")
	}
	if req.Estimate.WindowType != nil {
		t.Fatalf("expected null window type")
	}
	if req.EstimatedTotal.Min != 1300 || req.EstimatedTotal.Max != 1300 {
		t.Fatalf("unexpected total %+v", req.EstimatedTotal)
	}
}

func TestSubmitReportsEndpointError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Valid phone number is required"}`, "Valid phone number is required"},
		{"no error field", `{"detail":"nope"}`, MessageFailed},
		{"not json", `<html>bad gateway</html>`, MessageNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := New(srv.URL, time.Second, nil).Submit(context.Background(), submittedRecord())
			if res.Success || res.Message != tt.want {
				t.Fatalf("expected %q, got %+v", tt.want, res)
			}
		})
	}
}

func TestSubmitNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := New(url, time.Second, nil).Submit(context.Background(), submittedRecord())
	if res.Success || res.Message != MessageNetworkError {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSubmitTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	res := New(srv.URL, 50*time.Millisecond, nil).Submit(context.Background(), submittedRecord())
	if res.Success || res.Message != MessageNetworkError {
		t.Fatalf("unexpected result %+v", res)
	}
}
