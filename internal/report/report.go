// Package report pushes MagicPod per-case results into a TestRail run.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kazuki/runbridge/internal/magicpod"
	"github.com/kazuki/runbridge/internal/testrail"
)

// TestRail result status ids.
const (
	statusPassed = 1
	statusFailed = 5
)

// ResultPoster posts one case result. *testrail.Client satisfies it.
type ResultPoster interface {
	AddResultForCase(ctx context.Context, runID int64, caseID int, res testrail.ResultRequest) error
}

// Summary counts the outcome of one reporting pass.
type Summary struct {
	Submitted int
	Failed    int
}

// Results posts every per-case result of a batch run snapshot into the
// TestRail run, best-effort: a failed post is logged and counted but
// never stops the remaining items.
//
// Only a pass where nothing at all was submitted is an error.
func Results(ctx context.Context, poster ResultPoster, runID int64, run *magicpod.BatchRun, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var sum Summary
	for i, res := range run.TestResults {
		caseID := res.TestCaseID
		if caseID == 0 {
			// Fallback mapping only; the upstream snapshot normally
			// names the case explicitly.
			caseID = i + 1
			log.Warn("test result has no case id, using sequence index",
				zap.Int("index", i), zap.Int("case_id", caseID))
		}

		req := testrail.ResultRequest{
			StatusID: statusIDFor(res.Status),
			Comment:  comment(res),
			Elapsed:  elapsed(res.ElapsedTime),
		}
		if err := poster.AddResultForCase(ctx, runID, caseID, req); err != nil {
			sum.Failed++
			log.Warn("failed to post case result",
				zap.Int("case_id", caseID), zap.Error(err))
			continue
		}
		sum.Submitted++
	}

	if sum.Submitted == 0 && sum.Failed > 0 {
		return sum, fmt.Errorf("report: all %d result posts failed", sum.Failed)
	}
	return sum, nil
}

func statusIDFor(s magicpod.Status) int {
	if s == magicpod.StatusSucceeded {
		return statusPassed
	}
	return statusFailed
}

// comment builds the TestRail comment from the diagnostic fields the
// snapshot happens to carry.
func comment(res magicpod.TestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MagicPod Test URL: %s", res.TestURL)
	if res.ScreenshotURL != "" {
		fmt.Fprintf(&b, "\nScreenshot: %s", res.ScreenshotURL)
	}
	if res.ErrorText != "" {
		fmt.Fprintf(&b, "\nError: %s", res.ErrorText)
	}
	return b.String()
}

// elapsed renders seconds in TestRail's "<n>s" span format.
func elapsed(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0fs", seconds)
}
