package idlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const batchPrefix = "pdb_ids_batch_"

// Batch is one identifier batch file.
type Batch struct {
	Name string
	IDs  []string
}

// WriteBatches splits ids into files of at most size identifiers each,
// named pdb_ids_batch_N.txt under dir, and returns the number of files
// written.
func WriteBatches(dir string, ids []string, size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", size)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create ids dir: %w", err)
	}

	count := 0
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s%d.txt", batchPrefix, count))
		data := strings.Join(ids[start:end], "\n") + "\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			return count, fmt.Errorf("write batch file: %w", err)
		}
		count++
	}

	return count, nil
}

// LoadBatches reads all batch files under dir in name order. A
// directory without any batch files is an input error: there is nothing
// to download.
func LoadBatches(dir string) ([]Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ids dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), batchPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no %s* files in %s", batchPrefix, dir)
	}
	sort.Strings(names)

	batches := make([]Batch, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read batch file %s: %w", name, err)
		}

		var ids []string
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				ids = append(ids, line)
			}
		}
		batches = append(batches, Batch{Name: name, IDs: ids})
	}

	return batches, nil
}
