// Package retry drains the failure ledger in time-gated rounds.
//
// The scheduler is a two-state loop. In the scanning state it asks the
// ledger for entries below the attempt cap whose cooldown has elapsed
// and hands exactly that subset to a round function. In the waiting
// state, entered when entries remain but none is eligible yet, it
// sleeps for the poll interval and scans again. The loop ends when the
// ledger is empty.
//
// Before each scan, entries that have reached the attempt cap are
// removed; they are permanently failed and Drain returns their records
// so the caller can write them to the final report. After each round
// an entry is removed when its retry succeeded or when its artifact
// turns out to exist in storage.
//
// Time is injected via the Clock interface; production code uses
// RealClock and tests substitute a fake to step through cooldowns
// instantly.
package retry
