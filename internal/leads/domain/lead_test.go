package domain

import "testing"

func TestHashIP(t *testing.T) {
	if HashIP(UnknownIP) != "" || HashIP("") != "" {
		t.Fatalf("expected unknown addresses to hash to empty")
	}
	a := HashIP("203.0.113.7")
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
	if a != HashIP("203.0.113.7") || a == HashIP("203.0.113.8") {
		t.Fatalf("expected a stable, address-specific digest")
	}
}

func TestServiceLabel(t *testing.T) {
	if (Lead{}).ServiceLabel() != "unspecified" {
		t.Fatalf("expected unspecified label")
	}
	svc := "soft"
	if (Lead{Estimate: EstimateDetails{Service: &svc}}).ServiceLabel() != "soft" {
		t.Fatalf("expected soft label")
	}
}
