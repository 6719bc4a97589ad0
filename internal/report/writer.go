// Package report persists unresolved failures at the end of a run.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepbiolab/nano-abnovo/internal/ledger"
)

// Writer emits the final failure report. Rows are tab-separated
// (identifier, attempt count, last error) so downstream tooling can
// pick up the file directly.
type Writer struct {
	// Out is where the human-readable summary goes.
	// Default: os.Stdout
	Out io.Writer
}

// Write saves one row per record to path and prints a summary. An empty
// record set performs no I/O at all.
func (w *Writer) Write(records []ledger.FailureRecord, path string) error {
	if len(records) == 0 {
		return nil
	}

	out := w.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, "\nFinal failed downloads summary:")
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(out, "- %s: Failed %d times. Last error: %s\n", rec.ID, rec.Attempt, rec.LastError)
		fmt.Fprintf(&b, "%s\t%d\t%s\n", rec.ID, rec.Attempt, rec.LastError)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write failure report: %w", err)
	}

	fmt.Fprintf(out, "\nFailed downloads have been saved to '%s'\n", path)
	return nil
}
