// Package ledger tracks failed downloads across retry rounds.
//
// A Ledger maps identifiers to failure records carrying an attempt
// counter, the last error message, and the time of the last failure.
// An identifier is present exactly while its most recent attempt failed
// and it has neither exhausted its retry budget nor been found already
// stored.
//
// # Usage
//
//	led := ledger.New()
//	led.Record("1abc", "status code: 503", time.Now())
//
//	// Later, find entries due for another attempt:
//	ids := led.Eligible(time.Now(), 3, 5*time.Minute)
//
//	// After a successful retry:
//	led.Remove("1abc")
//
// Records survive for a single process run; anything left at the end is
// handed to the report writer.
package ledger
