package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/deepbiolab/nano-abnovo/internal/batch"
	"github.com/deepbiolab/nano-abnovo/internal/config"
	"github.com/deepbiolab/nano-abnovo/internal/fetch"
	"github.com/deepbiolab/nano-abnovo/internal/ledger"
	"github.com/deepbiolab/nano-abnovo/internal/progress"
	"github.com/deepbiolab/nano-abnovo/internal/report"
	"github.com/deepbiolab/nano-abnovo/internal/retry"
)

// pipeline wires the download engine for one command invocation.
type pipeline struct {
	cfg     config.Config
	bucket  *blob.Bucket
	fetcher *fetch.Fetcher
	runner  *batch.Runner
	ledger  *ledger.Ledger
	clock   retry.Clock
}

func newPipeline(ctx context.Context, cfg config.Config, urlTemplate, ext string) (*pipeline, error) {
	bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	client := fetch.NewClient(fetch.Options{
		MaxIdleConnsPerHost: cfg.Workers * 2,
		Timeout:             cfg.Fetch.Timeout,
		RequestsPerSecond:   cfg.Fetch.RequestsPerSecond,
		Burst:               cfg.Fetch.Burst,
	})
	fetcher := fetch.NewFetcher(client, bkt, urlTemplate, ext)

	led := ledger.New()
	var obs batch.Observer
	if cfg.Progress {
		obs = progress.NewReporter(progress.Options{Output: os.Stdout})
	}
	runner := batch.NewRunner(led, batch.Options{
		Workers:  cfg.Workers,
		Observer: obs,
	})

	return &pipeline{
		cfg:     cfg,
		bucket:  bkt,
		fetcher: fetcher,
		runner:  runner,
		ledger:  led,
		clock:   retry.RealClock(),
	}, nil
}

func (p *pipeline) Close() {
	p.bucket.Close()
}

// finish drains remaining failures through the retry scheduler, writes
// the final failure report, and returns the process exit code.
func (p *pipeline) finish(ctx context.Context, start time.Time) int {
	code := ExitSuccess
	var unresolved []ledger.FailureRecord

	if !p.ledger.Empty() {
		fmt.Printf("\n[pdbfetch] Processing %d failed downloads...\n", p.ledger.Len())

		sched := retry.NewScheduler(retry.Options{
			MaxAttempts:  p.cfg.Retry.MaxAttempts,
			Cooldown:     p.cfg.Retry.Cooldown,
			PollInterval: p.cfg.Retry.PollInterval,
			Clock:        p.clock,
			Output:       os.Stdout,
		})
		round := func(ctx context.Context, ids []string) (map[string]bool, error) {
			return p.runner.Run(ctx, ids, p.fetcher)
		}
		exhausted, err := sched.Drain(ctx, p.ledger, round, p.fetcher)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[pdbfetch] Retry rounds aborted: %v\n", err)
			code = ExitGeneralError
		}
		unresolved = exhausted
	}

	// On an aborted drain the ledger still holds entries that never
	// exhausted their budget; report those too.
	unresolved = append(unresolved, p.ledger.Snapshot()...)

	w := &report.Writer{Out: os.Stdout}
	if err := w.Write(unresolved, p.cfg.ReportPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("\n[pdbfetch] Download process completed in %s\n", progress.FormatDuration(time.Since(start)))
	return code
}
