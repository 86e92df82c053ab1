// Package apiclient is a thin HTTP client over the control API. The
// `localopsd watch` command uses it to poll a run's status instead of
// opening the durable store directly, the same way a browser or any
// other control API consumer would.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localops/copilot/types"
)

// Client talks to a running control API over HTTP.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a Client with a sane default timeout.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("control API returned %d: %s", e.Status, e.Body)
}

// RunDetail mirrors the control API's joined run view (run row, steps,
// audits, artifacts, and inlined text content for report/diff/audit
// artifacts where the file is still on disk).
type RunDetail struct {
	types.Run
	Steps     []types.RunStep  `json:"steps"`
	Audits    []types.Audit    `json:"audits"`
	Artifacts []types.Artifact `json:"artifacts"`

	ReportContent *string `json:"report_content"`
	DiffContent   *string `json:"diff_content"`
	AuditContent  *string `json:"audit_content"`
}

// GetRun fetches the full joined view of a run.
func (c *Client) GetRun(ctx context.Context, runID int64) (*RunDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/runs/%d", c.BaseURL, runID), nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: building request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: GET run %d: %w", runID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var out RunDetail
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("apiclient: decoding response: %w", err)
	}
	return &out, nil
}
