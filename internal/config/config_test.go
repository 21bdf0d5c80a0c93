package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MAGICPOD_API_TOKEN", "token")
	t.Setenv("MAGICPOD_ORGANIZATION_NAME", "myorg")
	t.Setenv("MAGICPOD_PROJECT_NAME", "myproject")
	t.Setenv("MAGICPOD_TEST_SETTING_ID", "3")
	t.Setenv("TESTRAIL_URL", "https://tr.example.com")
	t.Setenv("TESTRAIL_USER", "ci@example.com")
	t.Setenv("TESTRAIL_PASSWORD", "apikey")
	t.Setenv("TESTRAIL_PROJECT_ID", "12")
	t.Setenv("TESTRAIL_TESTPLAN_JSON_FILENAME", "testplan.json")
}

func TestFromEnv_ReadsAllKeys(t *testing.T) {
	setFullEnv(t)

	cfg := FromEnv()
	assert.Equal(t, "token", cfg.MagicPod.APIToken)
	assert.Equal(t, "myorg", cfg.MagicPod.Organization)
	assert.Equal(t, "myproject", cfg.MagicPod.Project)
	assert.Equal(t, 3, cfg.MagicPod.TestSettingID)
	assert.Equal(t, "https://tr.example.com", cfg.TestRail.URL)
	assert.Equal(t, 12, cfg.TestRail.ProjectID)
	assert.Equal(t, "testplan.json", cfg.TestRail.PlanFile)
}

func TestFromEnv_GarbageIntBecomesZero(t *testing.T) {
	t.Setenv("MAGICPOD_TEST_SETTING_ID", "not-a-number")

	cfg := FromEnv()
	assert.Zero(t, cfg.MagicPod.TestSettingID)
}

func TestLoadFile_OverlaysBase(t *testing.T) {
	content := `{
		"magicpod": {"api_token": "file-token", "organization": "fileorg", "project": "fileproj"},
		"poll": {"interval": "5s", "max_wait": "10m"}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	base := Config{}
	base.MagicPod.APIToken = "env-token"
	base.TestRail.User = "env-user"

	cfg, err := LoadFile(path, base)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.MagicPod.APIToken)
	assert.Equal(t, "fileorg", cfg.MagicPod.Organization)
	// Values absent from the file carry through from base.
	assert.Equal(t, "env-user", cfg.TestRail.User)
	assert.Equal(t, "5s", cfg.Poll.Interval)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), Config{})
	assert.Error(t, err)
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadFile(path, Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidateMagicPod(t *testing.T) {
	setFullEnv(t)
	cfg := FromEnv()
	require.NoError(t, cfg.ValidateMagicPod())

	cfg.MagicPod.TestSettingID = 0
	assert.Error(t, cfg.ValidateMagicPod())

	cfg = FromEnv()
	cfg.MagicPod.Organization = ""
	assert.Error(t, cfg.ValidateMagicPod())
}

func TestValidateMagicPodToken(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.ValidateMagicPodToken())

	cfg.MagicPod.APIToken = "token"
	assert.NoError(t, cfg.ValidateMagicPodToken())
}

func TestValidateTestRail(t *testing.T) {
	setFullEnv(t)
	cfg := FromEnv()
	require.NoError(t, cfg.ValidateTestRail(false))
	require.NoError(t, cfg.ValidateTestRail(true))

	cfg.TestRail.ProjectID = 0
	assert.NoError(t, cfg.ValidateTestRail(false))
	assert.Error(t, cfg.ValidateTestRail(true))

	cfg = FromEnv()
	cfg.TestRail.URL = "not a url"
	assert.Error(t, cfg.ValidateTestRail(false))

	cfg = FromEnv()
	cfg.TestRail.PlanFile = ""
	assert.Error(t, cfg.ValidateTestRail(false))
}

func TestPollDurations(t *testing.T) {
	var cfg Config
	interval, maxWait, err := cfg.PollDurations()
	require.NoError(t, err)
	assert.Zero(t, interval)
	assert.Zero(t, maxWait)

	cfg.Poll.Interval = "10s"
	cfg.Poll.MaxWait = "30m"
	interval, maxWait, err = cfg.PollDurations()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, interval)
	assert.Equal(t, 30*time.Minute, maxWait)

	cfg.Poll.Interval = "ten seconds"
	_, _, err = cfg.PollDurations()
	assert.Error(t, err)
}
