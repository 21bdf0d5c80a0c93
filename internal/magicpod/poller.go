package magicpod

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrDeadlineExceeded is returned by WaitForCompletion when no terminal
// snapshot arrived within MaxWait. The last-seen snapshot is still
// returned alongside it; the caller decides whether it is usable.
var ErrDeadlineExceeded = errors.New("magicpod: batch run did not finish before the deadline")

// DefaultPollInterval is how long to sleep between status fetches.
// Batch runs take minutes, so a fixed interval is enough; backoff would
// buy nothing here.
const DefaultPollInterval = 10 * time.Second

// DefaultMaxWait bounds a whole polling sequence.
const DefaultMaxWait = 30 * time.Minute

// BatchRunFetcher fetches the current snapshot of a batch run.
// *Client satisfies it.
type BatchRunFetcher interface {
	GetBatchRun(ctx context.Context, number int) (*BatchRun, error)
}

// PollOptions configures WaitForCompletion. Zero values use defaults.
type PollOptions struct {
	Interval time.Duration
	MaxWait  time.Duration
	Logger   *zap.Logger
}

// WaitForCompletion polls the batch run until its status is terminal or
// MaxWait elapses.
//
// Transport errors during polling are logged and retried on the next
// tick; they never end the loop. Only status changes are logged, so a
// long run does not flood the output with identical lines. On deadline
// overrun the last-seen snapshot (possibly nil, possibly non-terminal)
// is returned together with ErrDeadlineExceeded.
func WaitForCompletion(ctx context.Context, fetcher BatchRunFetcher, number int, opts PollOptions) (*BatchRun, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Int("batch_run_number", number))

	var (
		last       *BatchRun
		lastStatus Status
	)
	for elapsed := time.Duration(0); elapsed < maxWait; elapsed += interval {
		snapshot, err := fetcher.GetBatchRun(ctx, number)
		switch {
		case err != nil:
			// Recoverable miss; try again next tick.
			log.Warn("status fetch failed, will retry", zap.Error(err))
		case snapshot.Status.Terminal():
			log.Info("batch run finished", zap.String("status", string(snapshot.Status)))
			return snapshot, nil
		default:
			last = snapshot
			if snapshot.Status != lastStatus {
				log.Info("batch run status changed", zap.String("status", string(snapshot.Status)))
				lastStatus = snapshot.Status
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}

	log.Warn("deadline exceeded while waiting for batch run",
		zap.Duration("max_wait", maxWait))
	return last, ErrDeadlineExceeded
}
