package magicpod

// Status is the batch-run status tag reported by the API.
type Status string

const (
	StatusRunning    Status = "running"
	StatusUnresolved Status = "unresolved"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusAborted    Status = "aborted"
)

// Terminal reports whether no further status transitions can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusAborted:
		return true
	}
	return false
}

// BatchRun is one status snapshot of a remote batch run. It is
// re-fetched on every poll tick; only the terminal snapshot carries a
// complete TestResults slice.
type BatchRun struct {
	BatchRunNumber int          `json:"batch_run_number"`
	Status         Status       `json:"status"`
	TestCases      CaseSummary  `json:"test_cases"`
	TestResults    []TestResult `json:"test_results"`
	URL            string       `json:"url,omitempty"`
}

// CaseSummary aggregates per-case counts for a batch run.
type CaseSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Aborted   int `json:"aborted"`
	Total     int `json:"total"`
}

// TestResult is one per-case record inside a terminal snapshot.
type TestResult struct {
	TestCaseID    int     `json:"test_case_id"`
	Status        Status  `json:"status"`
	TestURL       string  `json:"test_url"`
	ScreenshotURL string  `json:"screenshot_url,omitempty"`
	ErrorText     string  `json:"error_text,omitempty"`
	ElapsedTime   float64 `json:"elapsed_time"`
}
