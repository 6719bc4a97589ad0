// Package fetch downloads individual structure files over HTTP into
// object storage.
//
// This package handles:
//   - Connection pooling for parallel downloads
//   - A fixed per-request timeout (one attempt per call, no backoff)
//   - Optional request rate limiting
//   - Skipping identifiers whose artifact is already stored
//
// # Usage
//
//	client := fetch.NewClient(fetch.Options{
//	    Timeout: 30 * time.Second,
//	})
//	f := fetch.NewFetcher(client, bucket,
//	    "https://files.rcsb.org/download/%s.cif", "cif")
//
//	res := f.Fetch(ctx, "1abc")
//	// res.OK, res.Message
//
// Fetch never returns an error: every outcome is a Result whose Message
// is suitable for progress output and failure records. Storage is a
// gocloud.dev/blob bucket, so output can go to a local directory
// (file://), S3, GCS, or an in-memory bucket in tests.
package fetch
