package orchestrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEmitter_Publish(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	emitter := NewHTTPEmitter(srv.URL, "test-key")
	emitter.Publish(42, []byte(`{"event":"run.status","run_id":42,"status":"running"}`))

	if gotPath != "/v1/internal/runs/42/events" {
		t.Fatalf("path = %q, want /v1/internal/runs/42/events", gotPath)
	}
	if gotAPIKey != "test-key" {
		t.Fatalf("x-api-key = %q, want test-key", gotAPIKey)
	}
	if gotBody["status"] != "running" {
		t.Fatalf("body status = %v, want running", gotBody["status"])
	}
}

func TestHTTPEmitter_Publish_UnreachableDoesNotPanic(t *testing.T) {
	emitter := NewHTTPEmitter("http://127.0.0.1:1", "test-key")
	emitter.Publish(1, []byte(`{}`))
}
