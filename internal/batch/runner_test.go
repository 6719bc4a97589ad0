package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepbiolab/nano-abnovo/internal/fetch"
	"github.com/deepbiolab/nano-abnovo/internal/ledger"
)

// fakeFetcher fails the identifiers in failing and tracks call counts
// and the peak number of concurrent fetches.
type fakeFetcher struct {
	failing map[string]bool
	delay   time.Duration

	mu        sync.Mutex
	calls     map[string]int
	inFlight  int32
	peak      int32
}

func newFakeFetcher(failing ...string) *fakeFetcher {
	f := &fakeFetcher{
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
	for _, id := range failing {
		f.failing[id] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, id string) fetch.Result {
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}
	defer atomic.AddInt32(&f.inFlight, -1)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls[id]++
	f.mu.Unlock()

	if f.failing[id] {
		return fetch.Result{ID: id, Message: fmt.Sprintf("Failed to download %s, status code: 503", id)}
	}
	return fetch.Result{ID: id, OK: true, Message: fmt.Sprintf("Successfully downloaded %s", id)}
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}
	return ids
}

func TestRunAllSucceed(t *testing.T) {
	led := ledger.New()
	runner := NewRunner(led, Options{Workers: 4})
	f := newFakeFetcher()
	ids := makeIDs(20)

	outcomes, err := runner.Run(context.Background(), ids, f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outcomes) != len(ids) {
		t.Fatalf("expected %d outcomes, got %d", len(ids), len(outcomes))
	}
	for _, id := range ids {
		if !outcomes[id] {
			t.Errorf("%s: expected success", id)
		}
	}
	if !led.Empty() {
		t.Errorf("expected empty ledger, got %d records", led.Len())
	}
}

func TestRunRecordsFailures(t *testing.T) {
	led := ledger.New()
	runner := NewRunner(led, Options{Workers: 4})
	f := newFakeFetcher("id-001", "id-003")
	ids := makeIDs(5)

	outcomes, err := runner.Run(context.Background(), ids, f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcomes["id-001"] || outcomes["id-003"] {
		t.Error("failing ids must have false outcomes")
	}
	if led.Len() != 2 {
		t.Fatalf("expected 2 ledger records, got %d", led.Len())
	}
	rec, ok := led.Get("id-001")
	if !ok {
		t.Fatal("expected record for id-001")
	}
	if rec.Attempt != 1 {
		t.Errorf("expected attempt 1, got %d", rec.Attempt)
	}
	if !strings.Contains(rec.LastError, "id-001") {
		t.Errorf("error message should name the identifier: %q", rec.LastError)
	}
}

func TestRunFetchesEachIDOnce(t *testing.T) {
	led := ledger.New()
	runner := NewRunner(led, Options{Workers: 8})
	f := newFakeFetcher("id-002")
	ids := makeIDs(50)

	if _, err := runner.Run(context.Background(), ids, f); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, id := range ids {
		if f.calls[id] != 1 {
			t.Errorf("%s: expected 1 fetch, got %d", id, f.calls[id])
		}
	}
}

func TestRunConcurrencyBound(t *testing.T) {
	led := ledger.New()
	workers := 3
	runner := NewRunner(led, Options{Workers: workers})
	f := newFakeFetcher()
	f.delay = 5 * time.Millisecond

	if _, err := runner.Run(context.Background(), makeIDs(30), f); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if peak := atomic.LoadInt32(&f.peak); peak > int32(workers) {
		t.Errorf("concurrency bound exceeded: %d fetches in flight with %d workers", peak, workers)
	}
}

// recordingObserver captures every completion notification.
type recordingObserver struct {
	mu    sync.Mutex
	calls []struct {
		completed, total int
		message          string
	}
}

func (o *recordingObserver) ItemCompleted(completed, total int, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, struct {
		completed, total int
		message          string
	}{completed, total, message})
}

func TestRunNotifiesObserver(t *testing.T) {
	led := ledger.New()
	obs := &recordingObserver{}
	runner := NewRunner(led, Options{Workers: 4, Observer: obs})
	ids := makeIDs(25)

	if _, err := runner.Run(context.Background(), ids, newFakeFetcher()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(obs.calls) != len(ids) {
		t.Fatalf("expected %d notifications, got %d", len(ids), len(obs.calls))
	}
	last := obs.calls[len(obs.calls)-1]
	if last.completed != len(ids) || last.total != len(ids) {
		t.Errorf("final notification should be %d/%d, got %d/%d",
			len(ids), len(ids), last.completed, last.total)
	}
	for i, c := range obs.calls {
		if c.completed != i+1 {
			t.Fatalf("notification %d: expected completed %d, got %d", i, i+1, c.completed)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	led := ledger.New()
	runner := NewRunner(led, Options{Workers: 2})
	f := newFakeFetcher()
	f.delay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := runner.Run(ctx, makeIDs(100), f)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(outcomes) == 100 {
		t.Error("expected cancellation to stop dispatch early")
	}
}

func TestRunFixedTimeSource(t *testing.T) {
	led := ledger.New()
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	runner := NewRunner(led, Options{
		Workers: 1,
		Now:     func() time.Time { return fixed },
	})

	if _, err := runner.Run(context.Background(), []string{"bad"}, newFakeFetcher("bad")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec, ok := led.Get("bad")
	if !ok {
		t.Fatal("expected failure record")
	}
	if !rec.LastFailure.Equal(fixed) {
		t.Errorf("expected injected timestamp %v, got %v", fixed, rec.LastFailure)
	}
}
