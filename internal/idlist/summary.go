package idlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadSummary extracts the identifier column from a SAbDab summary TSV
// file. The header row is skipped and duplicates are dropped, keeping
// first-seen order. A missing file is an input error that should abort
// the run.
func ReadSummary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var ids []string

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, _, _ := strings.Cut(line, "\t")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read summary file: %w", err)
	}

	return ids, nil
}
