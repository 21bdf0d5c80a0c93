// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full CLI configuration, built once at the boundary from
// environment variables, an optional JSON config file, and flags. The
// poller and resolver never touch process state themselves.
type Config struct {
	MagicPod MagicPodConfig `json:"magicpod"`
	TestRail TestRailConfig `json:"testrail"`
	Poll     PollConfig     `json:"poll"`
	Log      LogConfig      `json:"log"`
}

// MagicPodConfig holds MagicPod API credentials and the test setting to
// run.
type MagicPodConfig struct {
	APIToken      string `json:"api_token" validate:"required"`
	Organization  string `json:"organization" validate:"required"`
	Project       string `json:"project" validate:"required"`
	TestSettingID int    `json:"test_setting_id"`
}

// TestRailConfig holds TestRail connection details and the path of the
// persisted plan document.
type TestRailConfig struct {
	URL       string `json:"url" validate:"required,url"`
	User      string `json:"user" validate:"required"`
	Password  string `json:"password" validate:"required"`
	ProjectID int    `json:"project_id"`
	PlanFile  string `json:"plan_file" validate:"required"`
}

// PollConfig holds poller timing as duration strings ("10s", "30m").
// Empty values use the poller defaults.
type PollConfig struct {
	Interval string `json:"interval,omitempty"`
	MaxWait  string `json:"max_wait,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
	File   string `json:"file,omitempty"`
}

var validate = validator.New()

// FromEnv builds a Config from the process environment. This is the
// only place environment variables are read.
func FromEnv() Config {
	return Config{
		MagicPod: MagicPodConfig{
			APIToken:      os.Getenv("MAGICPOD_API_TOKEN"),
			Organization:  os.Getenv("MAGICPOD_ORGANIZATION_NAME"),
			Project:       os.Getenv("MAGICPOD_PROJECT_NAME"),
			TestSettingID: envInt("MAGICPOD_TEST_SETTING_ID"),
		},
		TestRail: TestRailConfig{
			URL:       os.Getenv("TESTRAIL_URL"),
			User:      os.Getenv("TESTRAIL_USER"),
			Password:  os.Getenv("TESTRAIL_PASSWORD"),
			ProjectID: envInt("TESTRAIL_PROJECT_ID"),
			PlanFile:  os.Getenv("TESTRAIL_TESTPLAN_JSON_FILENAME"),
		},
	}
}

// LoadFile reads a JSON config file and overlays it onto base. Values
// present in the file win over base; everything else carries through.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ValidateMagicPodToken checks the one value the client download
// needs; that endpoint is not project-scoped.
func (c *Config) ValidateMagicPodToken() error {
	if c.MagicPod.APIToken == "" {
		return fmt.Errorf("config: MAGICPOD_API_TOKEN is required")
	}
	return nil
}

// ValidateMagicPod checks everything a batch run needs.
func (c *Config) ValidateMagicPod() error {
	if err := validate.Struct(c.MagicPod); err != nil {
		return fmt.Errorf("config: magicpod settings incomplete: %w", err)
	}
	if c.MagicPod.TestSettingID <= 0 {
		return fmt.Errorf("config: MAGICPOD_TEST_SETTING_ID must be a positive integer")
	}
	return nil
}

// ValidateTestRail checks everything the TestRail client needs.
// requireProject additionally demands a project id (only plan creation
// needs one).
func (c *Config) ValidateTestRail(requireProject bool) error {
	if err := validate.Struct(c.TestRail); err != nil {
		return fmt.Errorf("config: testrail settings incomplete: %w", err)
	}
	if requireProject && c.TestRail.ProjectID <= 0 {
		return fmt.Errorf("config: TESTRAIL_PROJECT_ID must be a positive integer")
	}
	return nil
}

// PollDurations parses the poll timing strings. Zero durations mean
// "use the poller default".
func (c *Config) PollDurations() (interval, maxWait time.Duration, err error) {
	if c.Poll.Interval != "" {
		interval, err = time.ParseDuration(c.Poll.Interval)
		if err != nil {
			return 0, 0, fmt.Errorf("config: invalid poll interval %q: %w", c.Poll.Interval, err)
		}
	}
	if c.Poll.MaxWait != "" {
		maxWait, err = time.ParseDuration(c.Poll.MaxWait)
		if err != nil {
			return 0, 0, fmt.Errorf("config: invalid poll max wait %q: %w", c.Poll.MaxWait, err)
		}
	}
	return interval, maxWait, nil
}

// envInt reads an integer environment variable, treating absence or
// garbage as zero; validation catches the zero later.
func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
