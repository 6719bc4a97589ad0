package ledger

import (
	"sort"
	"sync"
	"time"
)

// FailureRecord tracks the retry state of one identifier that failed
// to download.
type FailureRecord struct {
	ID          string
	Attempt     int
	LastError   string
	LastFailure time.Time

	seq int
}

// Ledger is an in-memory map of identifiers to their failure records.
// It is shared between the batch runner, which records failures as
// worker results arrive, and the retry scheduler, which reads and
// prunes it between rounds. All methods are safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*FailureRecord
	nextSeq int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		records: make(map[string]*FailureRecord),
	}
}

// Record registers a failed attempt for id. The first failure creates a
// record with attempt 1; subsequent failures increment the attempt
// counter and overwrite the message and timestamp.
func (l *Ledger) Record(id, message string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec, ok := l.records[id]; ok {
		rec.Attempt++
		rec.LastError = message
		rec.LastFailure = now
		return
	}

	l.records[id] = &FailureRecord{
		ID:          id,
		Attempt:     1,
		LastError:   message,
		LastFailure: now,
		seq:         l.nextSeq,
	}
	l.nextSeq++
}

// Remove deletes the record for id. Removing an unknown id is a no-op.
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, id)
}

// Get returns a copy of the record for id.
func (l *Ledger) Get(id string) (FailureRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return FailureRecord{}, false
	}
	return *rec, true
}

// Eligible returns the identifiers that are due for a retry: those with
// fewer than maxAttempts failed attempts whose last failure is at least
// cooldown in the past.
func (l *Ledger) Eligible(now time.Time, maxAttempts int, cooldown time.Duration) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []string
	for id, rec := range l.records {
		if rec.Attempt < maxAttempts && now.Sub(rec.LastFailure) >= cooldown {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Empty reports whether the ledger has no records.
func (l *Ledger) Empty() bool {
	return l.Len() == 0
}

// Snapshot returns copies of all records in insertion order.
func (l *Ledger) Snapshot() []FailureRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]FailureRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
