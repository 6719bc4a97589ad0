package idlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func searchServer(t *testing.T, ids []string, pageSize int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var req struct {
			Query struct {
				Parameters struct {
					Operator string `json:"operator"`
					Value    string `json:"value"`
				} `json:"parameters"`
			} `json:"query"`
			ReturnType     string `json:"return_type"`
			RequestOptions struct {
				Paginate struct {
					Start int `json:"start"`
					Rows  int `json:"rows"`
				} `json:"paginate"`
			} `json:"request_options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ReturnType != "entry" {
			t.Errorf("return_type = %q, want entry", req.ReturnType)
		}
		if req.Query.Parameters.Operator != "less" {
			t.Errorf("operator = %q, want less", req.Query.Parameters.Operator)
		}
		if req.RequestOptions.Paginate.Rows != pageSize {
			t.Errorf("rows = %d, want %d", req.RequestOptions.Paginate.Rows, pageSize)
		}

		start := req.RequestOptions.Paginate.Start
		end := start + pageSize
		if start > len(ids) {
			start = len(ids)
		}
		if end > len(ids) {
			end = len(ids)
		}

		type entry struct {
			Identifier string `json:"identifier"`
		}
		resp := struct {
			ResultSet []entry `json:"result_set"`
		}{ResultSet: []entry{}}
		for _, id := range ids[start:end] {
			resp.ResultSet = append(resp.ResultSet, entry{Identifier: id})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEntriesBeforePaginates(t *testing.T) {
	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, fmt.Sprintf("%04d", i))
	}

	srv := searchServer(t, ids, 3)
	defer srv.Close()

	var out bytes.Buffer
	c := &Client{BaseURL: srv.URL, PageSize: 3, Output: &out}
	got, err := c.EntriesBefore(context.Background(), "2020-01-01")
	if err != nil {
		t.Fatalf("EntriesBefore: %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("ids = %v, want %v", got, ids)
	}
	if !strings.Contains(out.String(), "(total: 7)") {
		t.Errorf("missing progress output:\n%s", out.String())
	}
}

func TestEntriesBeforeServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"result_set": []map[string]string{{"identifier": "1abc"}},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, PageSize: 1}
	got, err := c.EntriesBefore(context.Background(), "2020-01-01")
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
	// Partial results survive the failure.
	if !reflect.DeepEqual(got, []string{"1abc"}) {
		t.Errorf("partial ids = %v, want [1abc]", got)
	}
}

func TestWriteAndLoadBatches(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"1abc", "2def", "3ghi", "4jkl", "5mno"}

	n, err := WriteBatches(dir, ids, 2)
	if err != nil {
		t.Fatalf("WriteBatches: %v", err)
	}
	if n != 3 {
		t.Errorf("wrote %d batches, want 3", n)
	}

	batches, err := LoadBatches(dir)
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("loaded %d batches, want 3", len(batches))
	}
	if batches[0].Name != "pdb_ids_batch_0.txt" {
		t.Errorf("batch 0 name = %q", batches[0].Name)
	}

	var loaded []string
	for _, b := range batches {
		loaded = append(loaded, b.IDs...)
	}
	if !reflect.DeepEqual(loaded, ids) {
		t.Errorf("round trip = %v, want %v", loaded, ids)
	}
}

func TestWriteBatchesBadSize(t *testing.T) {
	if _, err := WriteBatches(t.TempDir(), []string{"1abc"}, 0); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}
}

func TestLoadBatchesEmptyDir(t *testing.T) {
	if _, err := LoadBatches(t.TempDir()); err == nil {
		t.Fatal("expected error when no batch files exist")
	}
}

func TestLoadBatchesMissingDir(t *testing.T) {
	if _, err := LoadBatches(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestReadSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.tsv")
	content := "pdb\tHchain\tLchain\n" +
		"7xyz\tH\tL\n" +
		"7xyz\tA\tB\n" +
		"8abc\tH\tL\n" +
		"\n" +
		"9def\tH\tL\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	ids, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	want := []string{"7xyz", "8abc", "9def"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestReadSummaryMissingFile(t *testing.T) {
	if _, err := ReadSummary(filepath.Join(t.TempDir(), "nope.tsv")); err == nil {
		t.Fatal("expected error for missing summary file")
	}
}
