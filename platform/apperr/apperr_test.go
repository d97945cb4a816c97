package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("session not found"), http.StatusNotFound},
		{Validation("Valid name is required"), http.StatusBadRequest},
		{Conflict("busy"), http.StatusConflict},
		{Internal("boom"), http.StatusInternalServerError},
		{TooManyRequests("slow down"), http.StatusTooManyRequests},
		{MethodNotAllowed("Method not allowed"), http.StatusMethodNotAllowed},
		{New(KindUnknown, "??"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Fatalf("%q: expected %d, got %d", tt.err.Message, tt.want, got)
		}
	}
}

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Wrap(KindInternal, "Failed to process lead", cause).WithOp("leads.Submit")

	if err.Message != "Failed to process lead" {
		t.Fatalf("message leaked the cause: %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to unwrap")
	}
	if got := err.Error(); got != "leads.Submit: Failed to process lead: pq: connection reset" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestIsFollowsChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Validation("Valid phone number is required"))
	if !Is(err, KindValidation) {
		t.Fatalf("expected validation kind through the chain")
	}
	if Is(errors.New("plain"), KindValidation) || GetKind(nil) != KindUnknown {
		t.Fatalf("expected plain errors to have no kind")
	}
}
