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
	sabdabURLTemplate = "https://opig.stats.ox.ac.uk/webapps/sabdab-sabpred/sabdab/pdb/%s"
	sabdabExt         = "pdb"
)

// runSabdab downloads every antibody structure listed in a SAbDab
// summary TSV file. The summary file must already exist; producing it
// is a manual export from the SAbDab web interface.
func runSabdab(args []string) int {
	fs := flag.NewFlagSet("sabdab", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	summary := fs.String("summary", "datasets/raw/sabdab_ids/sabdab_summary_all.tsv", "SAbDab summary TSV file")
	output := fs.String("output", "datasets/raw/sabdab", "Local output directory (ignored when -bucket is set)")
	bucketURL := fs.String("bucket", "", "Destination bucket URL, e.g. s3://my-bucket (overrides -output)")
	fs.Bool("progress", true, "Print progress output")
	fs.String("report", "datasets/failed_downloads_sabdab.txt", "Failure report path")
	registerTuningFlags(fs, 8)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pdbfetch sabdab [options]

Read identifiers from a SAbDab summary TSV and bulk-download the
corresponding structure files. Failed downloads are retried after a
cooldown; unresolved failures are written to the report file.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	cfg.Workers = 8
	cfg.ReportPath = "datasets/failed_downloads_sabdab.txt"
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

	fmt.Println("[pdbfetch] Reading SAbDab summary file...")
	ids, err := idlist.ReadSummary(*summary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInputError
	}
	fmt.Printf("[pdbfetch] Found %d unique PDB IDs in SAbDab database\n", len(ids))

	ctx, cancel := signalContext()
	defer cancel()

	p, err := newPipeline(ctx, cfg, sabdabURLTemplate, sabdabExt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer p.Close()

	start := time.Now()
	fmt.Println("\n[pdbfetch] Starting structure downloads...")
	if _, err := p.runner.Run(ctx, ids, p.fetcher); err != nil {
		fmt.Fprintf(os.Stderr, "[pdbfetch] Run aborted: %v\n", err)
		return ExitGeneralError
	}

	return p.finish(ctx, start)
}
