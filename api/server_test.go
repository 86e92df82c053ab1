package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/localops/copilot/artifact"
	"github.com/localops/copilot/eventbus"
	"github.com/localops/copilot/planner"
	"github.com/localops/copilot/store"
)

func openTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	url := strings.TrimSpace(os.Getenv("LOCALOPS_TEST_DATABASE_URL"))
	if url == "" {
		t.Skip("LOCALOPS_TEST_DATABASE_URL not set, skipping api integration test")
	}
	st, err := store.Open(context.Background(), url)
	if err != nil {
		t.Fatalf("store.Open() err=%v", err)
	}
	t.Cleanup(st.Close)

	srv := &Server{
		Store:     st,
		Bus:       eventbus.NewBus(),
		Artifacts: artifact.NewStore(t.TempDir()),
		Planner:   planner.RuleBased{},
		APIKey:    "test-key",
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestCreateAndListProjects(t *testing.T) {
	_, ts := openTestServer(t)
	client := ts.Client()

	body, _ := json.Marshal(map[string]string{"name": "demo", "root_path": t.TempDir()})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/projects", bytes.NewReader(body))
	req.Header.Set("x-api-key", "test-key")
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project status = %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/v1/projects", nil)
	req.Header.Set("x-api-key", "test-key")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list projects status = %d", resp.StatusCode)
	}
}

func TestCreateProject_RequiresAPIKey(t *testing.T) {
	_, ts := openTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/v1/projects")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
