package magicpod

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadClient_Success(t *testing.T) {
	payload := bytes.Repeat([]byte("PK\x03\x04fake-zip-data"), 100)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client/", r.URL.Path)
		assert.Equal(t, "Token secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/zip", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))

	var buf bytes.Buffer
	info, err := client.DownloadClient(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, info.StatusCode)
	assert.Equal(t, int64(len(payload)), info.ContentLength)
	assert.True(t, info.LooksLikeArchive())
	assert.False(t, info.TooSmall())
	assert.Equal(t, payload, buf.Bytes())
	assert.True(t, strings.HasPrefix(info.Preview, "PK"))
}

func TestDownloadClient_SmallHTMLResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not a zip</html>"))
	}))

	var buf bytes.Buffer
	info, err := client.DownloadClient(context.Background(), &buf)
	require.NoError(t, err)

	assert.False(t, info.LooksLikeArchive())
	assert.True(t, info.TooSmall())
	assert.Contains(t, info.Preview, "not a zip")
}

func TestDownloadClient_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("forbidden"))
	}))

	var buf bytes.Buffer
	info, err := client.DownloadClient(context.Background(), &buf)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, http.StatusForbidden, info.StatusCode)
	assert.Zero(t, buf.Len())
}
