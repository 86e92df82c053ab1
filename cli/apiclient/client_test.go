package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v1/runs/7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"status":"RUNNING","steps":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	detail, err := c.GetRun(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetRun() err=%v", err)
	}
	if detail.ID != 7 || detail.Status != "RUNNING" {
		t.Errorf("got %+v", detail)
	}
}

func TestGetRun_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"run not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.GetRun(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err type = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d", apiErr.Status)
	}
}
