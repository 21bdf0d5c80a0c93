package magicpod

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// smallDownloadThreshold flags responses that are too small to be a
// real client archive; the API returns short error pages on bad tokens.
const smallDownloadThreshold = 1000

// DownloadInfo describes the response of a client download.
type DownloadInfo struct {
	StatusCode    int
	ContentType   string
	ContentLength int64 // bytes actually written
	Preview       string
}

// LooksLikeArchive reports whether the response content type is one the
// API uses for the client ZIP.
func (d *DownloadInfo) LooksLikeArchive() bool {
	return strings.Contains(d.ContentType, "application/zip") ||
		strings.Contains(d.ContentType, "application/octet-stream")
}

// TooSmall reports whether the body is suspiciously small for a client
// archive.
func (d *DownloadInfo) TooSmall() bool {
	return d.ContentLength < smallDownloadThreshold
}

// DownloadClient streams the api-client ZIP into w and returns response
// metadata for diagnostics. Non-200 responses fail with an *APIError
// carrying a truncated body copy.
func (c *Client) DownloadClient(ctx context.Context, w io.Writer) (*DownloadInfo, error) {
	url := c.baseURL + "/client/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{URL: url, Cause: err}
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/zip")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &APIError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	info := &DownloadInfo{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return info, &APIError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Keep the first bytes around so the caller can show what came back
	// when the payload turns out not to be a ZIP.
	head := make([]byte, 200)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return info, &APIError{URL: url, StatusCode: resp.StatusCode, Cause: err}
	}
	info.Preview = string(head[:n])

	written, err := w.Write(head[:n])
	if err != nil {
		return info, fmt.Errorf("magicpod: write client archive: %w", err)
	}
	rest, err := io.Copy(w, resp.Body)
	if err != nil {
		return info, fmt.Errorf("magicpod: write client archive: %w", err)
	}
	info.ContentLength = int64(written) + rest
	return info, nil
}
