package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPEmitter forwards run events to the control API's internal events
// route instead of publishing to an in-process eventbus.Bus. It is what the
// worker process uses when serve and worker run as separate OS processes
// and can't share a *eventbus.Bus directly, mirroring the original worker's
// _emit_event helper (a short-timeout httpx POST with an x-api-key header).
type HTTPEmitter struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPEmitter returns an HTTPEmitter with a 3-second request timeout,
// matching the original worker's httpx.Client(timeout=3.0).
func NewHTTPEmitter(baseURL, apiKey string) *HTTPEmitter {
	return &HTTPEmitter{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

// Publish posts payload to {BaseURL}/v1/internal/runs/{runID}/events. It is
// best-effort: a failed or non-2xx delivery is dropped rather than
// propagated, since a missed live event never affects a run's durable
// state (the store remains the source of truth a client can re-fetch from).
func (e *HTTPEmitter) Publish(runID int64, payload []byte) {
	url := fmt.Sprintf("%s/v1/internal/runs/%d/events", e.BaseURL, runID)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}
