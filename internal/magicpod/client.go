// Package magicpod talks to the MagicPod cloud API: starting batch
// runs, fetching their status, and downloading the api-client binary.
package magicpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://app.magicpod.com/api/v1.0"

// DefaultTimeout bounds each individual API request.
const DefaultTimeout = 30 * time.Second

const userAgent = "runbridge/1.0"

// maxErrorBody bounds how much of an error response is kept for
// diagnostics.
const maxErrorBody = 500

// APIError represents a failed API call: a transport failure or a
// non-2xx response.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("magicpod: request to %s failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("magicpod: %s returned HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// ClientOptions configures a Client. Nil means defaults.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a MagicPod API client scoped to one organization/project.
type Client struct {
	baseURL string
	token   string
	org     string
	project string
	httpc   *http.Client
}

// NewClient creates a Client. Only the token is always required; org
// and project may stay empty for callers that only download the
// api-client, which is not project-scoped.
func NewClient(token, org, project string, opts *ClientOptions) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("magicpod: API token is required")
	}
	if opts == nil {
		opts = &ClientOptions{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		org:     org,
		project: project,
		httpc:   httpc,
	}, nil
}

// StartBatchRun starts a batch run for the given test setting and
// returns the initial snapshot carrying the batch run number.
func (c *Client) StartBatchRun(ctx context.Context, testSettingID int) (*BatchRun, error) {
	url := fmt.Sprintf("%s/%s/%s/batch-run/", c.baseURL, c.org, c.project)
	body := map[string]int{"test_setting_id": testSettingID}

	var run BatchRun
	if err := c.doJSON(ctx, http.MethodPost, url, body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetBatchRun fetches the current snapshot of a batch run.
func (c *Client) GetBatchRun(ctx context.Context, number int) (*BatchRun, error) {
	url := fmt.Sprintf("%s/%s/%s/batch-run/%d/", c.baseURL, c.org, c.project, number)

	var run BatchRun
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// doJSON performs one authenticated JSON round trip. A non-2xx status
// is returned as an *APIError with a truncated body copy.
func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("magicpod: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &APIError{URL: url, Cause: err}
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
