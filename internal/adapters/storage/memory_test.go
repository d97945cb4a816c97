package storage

import (
	"context"
	"io"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.PutObject(ctx, "leads", "a.json", "application/json", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := s.GetObject(ctx, "leads", "a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"id":"a"}` || s.ContentType("leads", "a.json") != "application/json" {
		t.Fatalf("unexpected object %q", data)
	}

	if err := s.DeleteObject(ctx, "leads", "a.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetObject(ctx, "leads", "a.json"); err == nil {
		t.Fatalf("expected missing object after delete")
	}
}
