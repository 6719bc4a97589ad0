package batch

import (
	"context"
	"time"

	"github.com/deepbiolab/nano-abnovo/internal/fetch"
	"github.com/deepbiolab/nano-abnovo/internal/ledger"
)

// Fetcher downloads the file for a single identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) fetch.Result
}

// Observer receives sparse completion notifications from a round.
// Implementations must not block.
type Observer interface {
	ItemCompleted(completed, total int, message string)
}

// Options configures a Runner.
type Options struct {
	// Workers is the maximum number of fetches in flight.
	// Default: 8
	Workers int

	// Observer is an optional progress sink.
	Observer Observer

	// Now is the time source for failure timestamps.
	// Default: time.Now
	Now func() time.Time
}

// Runner executes fetches for a list of identifiers under a bounded
// worker pool, recording failures in the ledger. It never retries;
// retry policy belongs to the scheduler driving it.
type Runner struct {
	workers  int
	ledger   *ledger.Ledger
	observer Observer
	now      func() time.Time
}

// NewRunner creates a runner that records failures in led.
func NewRunner(led *ledger.Ledger, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		workers:  opts.Workers,
		ledger:   led,
		observer: opts.Observer,
		now:      opts.Now,
	}
}

// Run dispatches every identifier to the fetcher with at most Workers
// fetches in flight, and returns the per-identifier outcome. A failed
// fetch is recorded in the ledger and never aborts the round. If ctx is
// cancelled, no further identifiers are dispatched, in-flight fetches
// are drained, and ctx.Err() is returned alongside the partial
// outcomes.
func (r *Runner) Run(ctx context.Context, ids []string, f Fetcher) (map[string]bool, error) {
	workCh := make(chan string)
	resultCh := make(chan fetch.Result, len(ids))

	for w := 0; w < r.workers; w++ {
		go func() {
			for id := range workCh {
				resultCh <- f.Fetch(ctx, id)
			}
		}()
	}

	// Feed identifiers, stopping early on cancellation. The dispatched
	// count tells the collector how many results to expect.
	dispatchedCh := make(chan int, 1)
	go func() {
		n := 0
		defer func() {
			close(workCh)
			dispatchedCh <- n
		}()
		for _, id := range ids {
			select {
			case workCh <- id:
				n++
			case <-ctx.Done():
				return
			}
		}
	}()

	outcomes := make(map[string]bool, len(ids))
	total := len(ids)
	dispatched := -1
	received := 0

	for dispatched < 0 || received < dispatched {
		select {
		case n := <-dispatchedCh:
			dispatched = n
		case res := <-resultCh:
			received++
			outcomes[res.ID] = res.OK
			if !res.OK {
				r.ledger.Record(res.ID, res.Message, r.now())
			}
			if r.observer != nil {
				r.observer.ItemCompleted(received, total, res.Message)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
