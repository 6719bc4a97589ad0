package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deepbiolab/nano-abnovo/internal/config"
	"github.com/deepbiolab/nano-abnovo/internal/idlist"
)

const (
	pdbURLTemplate = "https://files.rcsb.org/download/%s.cif"
	pdbExt         = "cif"
)

// runPDB downloads every RCSB PDB entry released before a cutoff date.
// Identifiers are enumerated via the search API, chunked into batch
// files, and downloaded batch by batch; failures are retried after a
// cooldown and anything unresolved lands in the failure report.
func runPDB(args []string) int {
	fs := flag.NewFlagSet("pdb", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	cutoff := fs.String("cutoff", "2020-01-01", "Only entries released before this date (YYYY-MM-DD)")
	output := fs.String("output", "datasets/raw/pdb", "Local output directory (ignored when -bucket is set)")
	bucketURL := fs.String("bucket", "", "Destination bucket URL, e.g. s3://my-bucket (overrides -output)")
	batchSize := fs.Int("batch-size", 1000, "Identifiers per batch file")
	resume := fs.Bool("resume", false, "Reuse existing batch files instead of querying the search API")
	fs.Bool("progress", true, "Print progress output")
	fs.String("ids-dir", "datasets/raw/pdb_ids", "Directory for identifier batch files")
	fs.String("report", "datasets/failed_downloads_pdb_cif.txt", "Failure report path")
	registerTuningFlags(fs, 20)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pdbfetch pdb [options]

Enumerate PDB entries released before the cutoff date and bulk-download
their mmCIF files. Failed downloads are retried after a cooldown;
unresolved failures are written to the report file.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	cfg.IDsDir = "datasets/raw/pdb_ids"
	cfg.ReportPath = "datasets/failed_downloads_pdb_cif.txt"
	cfg.Progress = true

	if *configPath != "" {
		overrides, err := config.ParseFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = cfg.Merge(overrides)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg = applyFlagOverrides(cfg, fs)
	if *bucketURL != "" {
		cfg.Bucket = *bucketURL
	}
	if cfg.Bucket == "" {
		url, err := dirBucketURL(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		cfg.Bucket = url
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := newPipeline(ctx, cfg, pdbURLTemplate, pdbExt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer p.Close()

	start := time.Now()

	if !*resume {
		fmt.Printf("[pdbfetch] Fetching PDB IDs for entries before %s...\n", *cutoff)
		search := &idlist.Client{Output: os.Stdout}
		ids, err := search.EntriesBefore(ctx, *cutoff)
		if err != nil {
			if len(ids) == 0 {
				fmt.Fprintf(os.Stderr, "Error fetching PDB IDs: %v\n", err)
				return ExitInputError
			}
			// Keep what we have; the missing tail can be picked up by a
			// later run with a fresh enumeration.
			fmt.Fprintf(os.Stderr, "Warning: ID enumeration stopped early: %v\n", err)
		}
		fmt.Printf("[pdbfetch] Found %d PDB entries in total.\n", len(ids))

		n, err := idlist.WriteBatches(cfg.IDsDir, ids, *batchSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		fmt.Printf("[pdbfetch] Saved %d batch files to %s\n", n, cfg.IDsDir)
	}

	batches, err := idlist.LoadBatches(cfg.IDsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInputError
	}

	fmt.Println("\n[pdbfetch] Starting structure downloads...")
	for i, b := range batches {
		fmt.Printf("\n[pdbfetch] Processing batch %d/%d (%.1f%%) - %s (%d IDs)\n",
			i+1, len(batches), float64(i+1)/float64(len(batches))*100, b.Name, len(b.IDs))

		if _, err := p.runner.Run(ctx, b.IDs, p.fetcher); err != nil {
			fmt.Fprintf(os.Stderr, "[pdbfetch] Batch aborted: %v\n", err)
			return ExitGeneralError
		}

		fmt.Printf("[pdbfetch] Completed %s | remaining batches: %d | current failed downloads: %d\n",
			b.Name, len(batches)-i-1, p.ledger.Len())

		if i < len(batches)-1 {
			if err := p.clock.Sleep(ctx, 2*time.Second); err != nil {
				return ExitGeneralError
			}
		}
	}

	return p.finish(ctx, start)
}
