// Package progress provides progress reporting for batch downloads.
//
// The reporter prints one human-readable line per cadence step rather
// than a live-updating display, so output stays useful when piped to a
// log file during runs that take hours.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Output: os.Stdout,
//	    Every:  10,
//	})
//
//	// Called by the batch runner as items complete
//	reporter.ItemCompleted(completed, total, lastMessage)
//
// # Output Format
//
//	[pdbfetch] Progress: 40/1000 (4.0%) - Successfully downloaded 1abc.cif
package progress
