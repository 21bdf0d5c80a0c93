// Package testrail talks to the TestRail v2 API and resolves run ids
// out of persisted test plan documents.
package testrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds each API request.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 500

// APIError represents a failed TestRail call.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("testrail: request to %s failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("testrail: %s returned HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// ClientOptions configures a Client. Nil means defaults.
type ClientOptions struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a TestRail API client using basic auth.
type Client struct {
	baseURL  string
	user     string
	password string
	httpc    *http.Client
}

// NewClient creates a Client for the TestRail instance at baseURL.
func NewClient(baseURL, user, password string, opts *ClientOptions) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("testrail: base URL is required")
	}
	if user == "" || password == "" {
		return nil, fmt.Errorf("testrail: user and password are required")
	}
	if opts == nil {
		opts = &ClientOptions{}
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, user: user, password: password, httpc: httpc}, nil
}

// PlanEntry is one suite entry of an add_plan request.
type PlanEntry struct {
	SuiteID    int            `json:"suite_id" yaml:"suite_id"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	IncludeAll bool           `json:"include_all" yaml:"include_all"`
	ConfigIDs  []int          `json:"config_ids,omitempty" yaml:"config_ids,omitempty"`
	Runs       []PlanEntryRun `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// PlanEntryRun is one run inside a plan entry.
type PlanEntryRun struct {
	IncludeAll bool  `json:"include_all" yaml:"include_all"`
	CaseIDs    []int `json:"case_ids,omitempty" yaml:"case_ids,omitempty"`
	ConfigIDs  []int `json:"config_ids,omitempty" yaml:"config_ids,omitempty"`
}

// PlanRequest is the body of add_plan.
type PlanRequest struct {
	Name    string      `json:"name"`
	Entries []PlanEntry `json:"entries"`
}

// ResultRequest is the body of add_result_for_case.
type ResultRequest struct {
	StatusID int    `json:"status_id"`
	Comment  string `json:"comment"`
	Elapsed  string `json:"elapsed,omitempty"`
}

// AddPlan creates a test plan and returns the raw response document.
// The raw form is kept because the consumer persists it verbatim and
// later probes its shape with ResolveRunID.
func (c *Client) AddPlan(ctx context.Context, projectID int, req PlanRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("add_plan/%d", projectID)
	if err := c.sendPost(ctx, endpoint, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// AddResultForCase posts one case result into a run.
func (c *Client) AddResultForCase(ctx context.Context, runID int64, caseID int, res ResultRequest) error {
	endpoint := fmt.Sprintf("add_result_for_case/%d/%d", runID, caseID)
	return c.sendPost(ctx, endpoint, res, nil)
}

// sendPost performs one basic-auth JSON POST against the v2 API.
func (c *Client) sendPost(ctx context.Context, endpoint string, in, out any) error {
	url := fmt.Sprintf("%s/index.php?/api/v2/%s", c.baseURL, endpoint)

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("testrail: encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &APIError{URL: url, Cause: err}
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &APIError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{URL: url, StatusCode: resp.StatusCode, Cause: err}
		}
	}
	return nil
}
