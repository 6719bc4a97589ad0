package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

// Result is the outcome of fetching a single identifier.
type Result struct {
	ID      string
	OK      bool
	Message string
}

// Fetcher downloads structure files into a bucket, one identifier at a
// time. The remote URL is derived from URLTemplate, which must contain
// a single %s verb for the identifier.
type Fetcher struct {
	client      *Client
	bucket      *blob.Bucket
	urlTemplate string
	ext         string
}

// NewFetcher creates a fetcher that stores files as {id}.{ext} in bucket.
func NewFetcher(client *Client, bucket *blob.Bucket, urlTemplate, ext string) *Fetcher {
	return &Fetcher{
		client:      client,
		bucket:      bucket,
		urlTemplate: urlTemplate,
		ext:         ext,
	}
}

// Key returns the bucket key for id.
func (f *Fetcher) Key(id string) string {
	return id + "." + f.ext
}

// URL returns the remote URL for id.
func (f *Fetcher) URL(id string) string {
	return fmt.Sprintf(f.urlTemplate, id)
}

// Exists reports whether the artifact for id is already stored.
func (f *Fetcher) Exists(ctx context.Context, id string) (bool, error) {
	return f.bucket.Exists(ctx, f.Key(id))
}

// Fetch downloads the file for id. If the artifact already exists in
// the bucket it returns success without touching the network. The body
// is read in full before the bucket write, so a failed transfer never
// leaves a partial artifact behind.
func (f *Fetcher) Fetch(ctx context.Context, id string) Result {
	key := f.Key(id)

	exists, err := f.bucket.Exists(ctx, key)
	if err != nil {
		return Result{ID: id, Message: fmt.Sprintf("Error checking %s: %v", key, err)}
	}
	if exists {
		return Result{ID: id, OK: true, Message: fmt.Sprintf("Already downloaded %s", key)}
	}

	body, err := f.client.Get(ctx, f.URL(id))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return Result{ID: id, Message: fmt.Sprintf("Failed to download %s, status code: %d", key, statusErr.Code)}
		}
		return Result{ID: id, Message: fmt.Sprintf("Error downloading %s: %v", key, err)}
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return Result{ID: id, Message: fmt.Sprintf("Error downloading %s: %v", key, err)}
	}

	if err := f.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return Result{ID: id, Message: fmt.Sprintf("Error writing %s: %v", key, err)}
	}

	return Result{ID: id, OK: true, Message: fmt.Sprintf("Successfully downloaded %s", key)}
}
