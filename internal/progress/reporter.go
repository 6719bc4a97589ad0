package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// Every is the completion cadence: a line is printed every Every-th
	// completed item and for the final item of a round.
	// Default: 10
	Every int
}

// Reporter outputs human-readable download progress. One line is
// printed per cadence step so large runs stay readable in a log file.
type Reporter struct {
	opts Options

	mu sync.Mutex
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Every == 0 {
		opts.Every = 10
	}
	return &Reporter{opts: opts}
}

// ItemCompleted reports one finished item. Only every Every-th
// completion and the final one produce output.
func (r *Reporter) ItemCompleted(completed, total int, message string) {
	if completed%r.opts.Every != 0 && completed != total {
		return
	}

	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.opts.Output, "[pdbfetch] Progress: %d/%d (%.1f%%) - %s\n",
		completed, total, percent, message)
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
