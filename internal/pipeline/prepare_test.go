package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazuki/runbridge/internal/testrail"
)

type fakeCreator struct {
	gotProject int
	gotReq     testrail.PlanRequest
	response   json.RawMessage
	err        error
}

func (f *fakeCreator) AddPlan(_ context.Context, projectID int, req testrail.PlanRequest) (json.RawMessage, error) {
	f.gotProject = projectID
	f.gotReq = req
	return f.response, f.err
}

func TestPrepare_DefaultTemplate(t *testing.T) {
	creator := &fakeCreator{
		response: json.RawMessage(`{"id": 55, "name": "plan", "entries": [{"runs": [{"id": 321}]}]}`),
	}
	planFile := filepath.Join(t.TempDir(), "testplan.json")

	err := Prepare(context.Background(), PrepareOptions{
		Creator:   creator,
		ProjectID: 12,
		PlanFile:  planFile,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, creator.gotProject)
	require.Len(t, creator.gotReq.Entries, 1)
	assert.Contains(t, creator.gotReq.Name, "MagicPod Test")

	// The persisted document must round-trip through the resolver.
	doc, err := testrail.LoadPlanDocument(planFile)
	require.NoError(t, err)
	id, err := testrail.ResolveRunID(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(321), id)
}

func TestPrepare_TemplateFile(t *testing.T) {
	tplPath := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(tplPath, []byte(`
name: Nightly
entries:
  - suite_id: 9
    include_all: true
`), 0o644))

	creator := &fakeCreator{response: json.RawMessage(`{"id": 1, "name": "Nightly"}`)}
	planFile := filepath.Join(t.TempDir(), "testplan.json")

	err := Prepare(context.Background(), PrepareOptions{
		Creator:      creator,
		ProjectID:    12,
		TemplatePath: tplPath,
		PlanFile:     planFile,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nightly", creator.gotReq.Name)
	assert.Equal(t, 9, creator.gotReq.Entries[0].SuiteID)
}

func TestPrepare_AddPlanFailureIsFatal(t *testing.T) {
	creator := &fakeCreator{err: errors.New("400 bad request")}

	err := Prepare(context.Background(), PrepareOptions{
		Creator:   creator,
		ProjectID: 12,
		PlanFile:  filepath.Join(t.TempDir(), "testplan.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create test plan")
}

func TestPrepare_BadTemplateIsFatal(t *testing.T) {
	err := Prepare(context.Background(), PrepareOptions{
		Creator:      &fakeCreator{},
		ProjectID:    12,
		TemplatePath: filepath.Join(t.TempDir(), "missing.yaml"),
		PlanFile:     filepath.Join(t.TempDir(), "testplan.json"),
	})
	require.Error(t, err)
}
