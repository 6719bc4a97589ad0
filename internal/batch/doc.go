// Package batch runs bounded-concurrency download rounds.
//
// A Runner feeds identifiers to a fixed pool of workers, collects every
// outcome exactly once regardless of completion order, and records
// failures in the shared ledger. Successes leave the ledger untouched;
// clearing resolved entries is the retry scheduler's job, which avoids
// racing a prune against results still arriving in the same round.
//
// # Usage
//
//	runner := batch.NewRunner(led, batch.Options{
//	    Workers:  20,
//	    Observer: reporter,
//	})
//	outcomes, err := runner.Run(ctx, ids, fetcher)
//
// # Worker Pool
//
// Workers receive identifiers from an unbuffered channel, so at most
// Workers fetches are in flight at any moment. Results flow back over a
// buffered channel sized for the round, so a slow observer never stalls
// a worker.
package batch
