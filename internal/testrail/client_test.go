package testrail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "ci@example.com", "apikey", nil)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiredArguments(t *testing.T) {
	_, err := NewClient("", "user", "pass", nil)
	assert.Error(t, err)

	_, err = NewClient("https://tr.example.com", "", "", nil)
	assert.Error(t, err)
}

func TestAddPlan_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/index.php", r.URL.Path)
		assert.Equal(t, "/api/v2/add_plan/12", r.URL.RawQuery)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ci@example.com", user)
		assert.Equal(t, "apikey", pass)

		var req PlanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nightly", req.Name)
		require.Len(t, req.Entries, 1)
		assert.Equal(t, 3, req.Entries[0].SuiteID)

		_, _ = w.Write([]byte(`{"id": 55, "name": "nightly", "entries": []}`))
	}))

	raw, err := client.AddPlan(context.Background(), 12, PlanRequest{
		Name:    "nightly",
		Entries: []PlanEntry{{SuiteID: 3, IncludeAll: true}},
	})
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, float64(55), resp["id"])
}

func TestAddResultForCase_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/add_result_for_case/55/10", r.URL.RawQuery)

		var req ResultRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.StatusID)
		assert.Equal(t, "12s", req.Elapsed)

		_, _ = w.Write([]byte(`{"id": 1}`))
	}))

	err := client.AddResultForCase(context.Background(), 55, 10, ResultRequest{
		StatusID: 1,
		Comment:  "ok",
		Elapsed:  "12s",
	})
	require.NoError(t, err)
}

func TestSendPost_HTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Field :plan_id is not a valid test plan."}`))
	}))

	_, err := client.AddPlan(context.Background(), 12, PlanRequest{Name: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "not a valid test plan")
}
