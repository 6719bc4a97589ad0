package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/deepbiolab/nano-abnovo/internal/config"
)

// registerTuningFlags declares the engine tunables shared by every
// command. Values are read back through applyFlagOverrides so only
// flags the user actually set override the config file and environment.
func registerTuningFlags(fs *flag.FlagSet, defaultWorkers int) {
	fs.Int("workers", defaultWorkers, "Number of parallel download workers")
	fs.Float64("rate", 0, "Request rate limit in requests per second (0 = unlimited)")
	fs.Duration("timeout", 30*time.Second, "Per-request timeout")
	fs.Int("max-attempts", 3, "Attempt cap per identifier")
	fs.Duration("cooldown", 5*time.Minute, "Wait after a failure before retrying")
	fs.Duration("poll-interval", time.Minute, "Wait between retry eligibility scans")
}

// applyFlagOverrides merges flags the user explicitly set over cfg.
// Only visited flags contribute, so an explicit zero such as
// -cooldown 0 or -progress=false is honored rather than dropped.
func applyFlagOverrides(cfg config.Config, fs *flag.FlagSet) config.Config {
	var o config.Overrides

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ids-dir":
			v := stringFlag(fs, f.Name)
			o.IDsDir = &v
		case "report":
			v := stringFlag(fs, f.Name)
			o.ReportPath = &v
		case "workers":
			v := intFlag(fs, f.Name)
			o.Workers = &v
		case "rate":
			v := floatFlag(fs, f.Name)
			o.Fetch.RequestsPerSecond = &v
		case "timeout":
			v := durationFlag(fs, f.Name)
			o.Fetch.Timeout = &v
		case "max-attempts":
			v := intFlag(fs, f.Name)
			o.Retry.MaxAttempts = &v
		case "cooldown":
			v := durationFlag(fs, f.Name)
			o.Retry.Cooldown = &v
		case "poll-interval":
			v := durationFlag(fs, f.Name)
			o.Retry.PollInterval = &v
		case "progress":
			v := boolFlag(fs, f.Name)
			o.Progress = &v
		}
	})

	return cfg.Merge(o)
}

func stringFlag(fs *flag.FlagSet, name string) string {
	return fs.Lookup(name).Value.String()
}

func boolFlag(fs *flag.FlagSet, name string) bool {
	v, _ := fs.Lookup(name).Value.(flag.Getter).Get().(bool)
	return v
}

func intFlag(fs *flag.FlagSet, name string) int {
	v, _ := fs.Lookup(name).Value.(flag.Getter).Get().(int)
	return v
}

func floatFlag(fs *flag.FlagSet, name string) float64 {
	v, _ := fs.Lookup(name).Value.(flag.Getter).Get().(float64)
	return v
}

func durationFlag(fs *flag.FlagSet, name string) time.Duration {
	v, _ := fs.Lookup(name).Value.(flag.Getter).Get().(time.Duration)
	return v
}

// dirBucketURL turns a local directory into a fileblob bucket URL,
// creating the directory on first use.
func dirBucketURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	return "file://" + abs + "?create_dir=true", nil
}
