package retry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deepbiolab/nano-abnovo/internal/ledger"
)

// RoundFunc runs one retry round over ids and reports per-identifier
// success. The batch runner's Run method, closed over a fetcher,
// satisfies this.
type RoundFunc func(ctx context.Context, ids []string) (map[string]bool, error)

// ArtifactChecker reports whether the output artifact for an identifier
// is already stored.
type ArtifactChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Options configures a Scheduler.
type Options struct {
	// MaxAttempts is the attempt cap per identifier.
	// Default: 3
	MaxAttempts int

	// Cooldown is the minimum time after a failure before an
	// identifier is retried. Zero retries immediately.
	Cooldown time.Duration

	// PollInterval is how long to wait when no entry is eligible yet.
	// Default: 1m
	PollInterval time.Duration

	// Clock is the time source.
	// Default: RealClock()
	Clock Clock

	// Output is where to write status lines.
	// Default: os.Stdout
	Output io.Writer
}

// Scheduler drains a failure ledger in rounds. It alternates between
// scanning for eligible entries and waiting out the cooldown, and
// prunes entries that succeed, show up in storage, or exhaust their
// attempt budget.
type Scheduler struct {
	opts Options
}

// NewScheduler creates a scheduler with the given options.
func NewScheduler(opts Options) *Scheduler {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Scheduler{opts: opts}
}

// Drain retries ledger entries until the ledger is empty or ctx is
// cancelled. Entries at the attempt cap are cleared at the top of every
// scan, before eligibility is computed; every other entry is retried
// until it succeeds or reaches the cap, so the loop terminates in a
// bounded number of rounds even when every retry keeps failing.
// Exhausted entries are removed from the ledger and returned so the
// caller can surface them in the final report.
func (s *Scheduler) Drain(ctx context.Context, led *ledger.Ledger, run RoundFunc, artifacts ArtifactChecker) ([]ledger.FailureRecord, error) {
	var exhausted []ledger.FailureRecord

	for {
		// An entry at the cap is never eligible again, so it must be
		// cleared here or it would strand the loop in Waiting.
		for _, rec := range led.Snapshot() {
			if rec.Attempt >= s.opts.MaxAttempts {
				fmt.Fprintf(s.opts.Output, "[pdbfetch] Maximum retry attempts reached for %s\n", rec.ID)
				led.Remove(rec.ID)
				exhausted = append(exhausted, rec)
			}
		}
		if led.Empty() {
			return exhausted, nil
		}
		if err := ctx.Err(); err != nil {
			return exhausted, err
		}

		eligible := led.Eligible(s.opts.Clock.Now(), s.opts.MaxAttempts, s.opts.Cooldown)
		if len(eligible) == 0 {
			// Waiting: entries exist but none has cleared its cooldown.
			fmt.Fprintln(s.opts.Output, "[pdbfetch] Waiting for retry cooldown...")
			if err := s.opts.Clock.Sleep(ctx, s.opts.PollInterval); err != nil {
				return exhausted, err
			}
			continue
		}

		fmt.Fprintf(s.opts.Output, "[pdbfetch] Retrying %d failed downloads...\n", len(eligible))
		outcomes, err := run(ctx, eligible)
		if err != nil {
			return exhausted, err
		}

		for _, id := range eligible {
			if outcomes[id] {
				led.Remove(id)
				continue
			}
			// The round's own signal already cleared successes; the
			// stat still catches artifacts written by anything else.
			if exists, err := artifacts.Exists(ctx, id); err == nil && exists {
				led.Remove(id)
			}
		}
	}
}
