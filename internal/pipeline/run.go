// Package pipeline provides the high-level orchestration for the three
// bridge flows: client download, plan preparation, and run-and-report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kazuki/runbridge/internal/magicpod"
	"github.com/kazuki/runbridge/internal/report"
	"github.com/kazuki/runbridge/internal/testrail"
)

// BatchRunner starts batch runs and fetches their snapshots.
// *magicpod.Client satisfies it.
type BatchRunner interface {
	StartBatchRun(ctx context.Context, testSettingID int) (*magicpod.BatchRun, error)
	GetBatchRun(ctx context.Context, number int) (*magicpod.BatchRun, error)
}

// RunOptions holds everything the run flow needs.
type RunOptions struct {
	Runner         BatchRunner
	Poster         report.ResultPoster
	TestSettingID  int
	PlanFile       string
	PollInterval   time.Duration
	PollMaxWait    time.Duration
	StrictDeadline bool // when set, a poll deadline overrun is fatal
	Logger         *zap.Logger
}

// Run starts a batch run, waits for it, resolves the TestRail run id
// from the persisted plan document, and pushes the per-case results.
//
// A poll deadline overrun is advisory: unless StrictDeadline is set,
// reporting proceeds with the last-seen snapshot when one exists.
func Run(ctx context.Context, opts RunOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("invocation_id", uuid.NewString()))

	fmt.Printf("Step 1/4: Starting batch run for test setting %d...\n", opts.TestSettingID)
	started, err := opts.Runner.StartBatchRun(ctx, opts.TestSettingID)
	if err != nil {
		return fmt.Errorf("start batch run: %w", err)
	}
	log.Info("batch run started", zap.Int("batch_run_number", started.BatchRunNumber))

	fmt.Printf("Step 2/4: Waiting for batch run %d to finish...\n", started.BatchRunNumber)
	final, err := magicpod.WaitForCompletion(ctx, opts.Runner, started.BatchRunNumber, magicpod.PollOptions{
		Interval: opts.PollInterval,
		MaxWait:  opts.PollMaxWait,
		Logger:   log,
	})
	if err != nil {
		if !errors.Is(err, magicpod.ErrDeadlineExceeded) || opts.StrictDeadline || final == nil {
			return fmt.Errorf("wait for batch run %d: %w", started.BatchRunNumber, err)
		}
		// Advisory timeout: report whatever results the last snapshot
		// carries rather than dropping them.
		log.Warn("deadline exceeded, reporting last-seen snapshot",
			zap.String("status", string(final.Status)))
	}

	fmt.Printf("Step 3/4: Resolving TestRail run id from %s...\n", opts.PlanFile)
	doc, err := testrail.LoadPlanDocument(opts.PlanFile)
	if err != nil {
		return err
	}
	runID, err := testrail.ResolveRunID(doc)
	if err != nil {
		return err
	}
	log.Info("resolved run id", zap.Int64("run_id", runID))

	fmt.Printf("Step 4/4: Reporting %d case results to TestRail run %d...\n",
		len(final.TestResults), runID)
	sum, err := report.Results(ctx, opts.Poster, runID, final, log)
	if err != nil {
		return err
	}
	fmt.Printf("Reported %d results, %d failed.\n", sum.Submitted, sum.Failed)
	return nil
}
