package idlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultSearchURL is the RCSB search service endpoint.
const DefaultSearchURL = "https://search.rcsb.org/rcsbsearch/v2/query"

// Client pages through the RCSB search API to enumerate entry
// identifiers.
type Client struct {
	// BaseURL overrides the search endpoint, mainly for tests.
	// Default: DefaultSearchURL
	BaseURL string

	// HTTP is the underlying client.
	// Default: http.Client with a 30s timeout
	HTTP *http.Client

	// PageSize is the number of rows requested per page.
	// Default: 100
	PageSize int

	// Output receives per-page progress lines. Nil disables them.
	Output io.Writer
}

type searchRequest struct {
	Query          searchQuery   `json:"query"`
	ReturnType     string        `json:"return_type"`
	RequestOptions searchOptions `json:"request_options"`
}

type searchQuery struct {
	Type       string       `json:"type"`
	Service    string       `json:"service"`
	Parameters searchParams `json:"parameters"`
}

type searchParams struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

type searchOptions struct {
	Paginate searchPaginate `json:"paginate"`
	Sort     []searchSort   `json:"sort"`
}

type searchPaginate struct {
	Start int `json:"start"`
	Rows  int `json:"rows"`
}

type searchSort struct {
	SortBy    string `json:"sort_by"`
	Direction string `json:"direction"`
}

type searchResponse struct {
	ResultSet []struct {
		Identifier string `json:"identifier"`
	} `json:"result_set"`
}

// EntriesBefore returns the identifiers of all entries released before
// the cutoff date (YYYY-MM-DD), newest first. Pagination stops at the
// first empty page. On a request error the identifiers collected so far
// are returned along with the error, so a long enumeration interrupted
// near the end is not wasted.
func (c *Client) EntriesBefore(ctx context.Context, cutoff string) ([]string, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultSearchURL
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	req := searchRequest{
		Query: searchQuery{
			Type:    "terminal",
			Service: "text",
			Parameters: searchParams{
				Attribute: "rcsb_accession_info.initial_release_date",
				Operator:  "less",
				Value:     cutoff,
			},
		},
		ReturnType: "entry",
		RequestOptions: searchOptions{
			Paginate: searchPaginate{Rows: pageSize},
			Sort: []searchSort{{
				SortBy:    "rcsb_accession_info.initial_release_date",
				Direction: "desc",
			}},
		},
	}

	var all []string
	for start := 0; ; start += pageSize {
		req.RequestOptions.Paginate.Start = start

		page, err := c.fetchPage(ctx, client, baseURL, &req)
		if err != nil {
			return all, fmt.Errorf("fetch entries at offset %d: %w", start, err)
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		if c.Output != nil {
			fmt.Fprintf(c.Output, "[pdbfetch] Fetched %d entries (total: %d)\n", len(page), len(all))
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, client *http.Client, url string, req *searchRequest) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	ids := make([]string, 0, len(sr.ResultSet))
	for _, entry := range sr.ResultSet {
		ids = append(ids, entry.Identifier)
	}
	return ids, nil
}
