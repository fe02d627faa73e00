package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FetchLog tracks which registered target paths have had their content
// materialized. Registration and materialization succeed independently, so a
// crash between the two would otherwise leave a "registered but never
// fetched" record that dedup hides from every later run. The log is a plain
// append-only list of target paths, one per line.
type FetchLog struct {
	file *os.File
	seen map[string]struct{}
}

// OpenFetchLog loads the fetched set and opens the log for appending.
func OpenFetchLog(path string) (*FetchLog, error) {
	seen := make(map[string]struct{})

	existing, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(existing)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				seen[line] = struct{}{}
			}
		}
		scanErr := scanner.Err()
		existing.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("failed to read fetch log: %w", scanErr)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to open fetch log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open fetch log for append: %w", err)
	}

	return &FetchLog{file: f, seen: seen}, nil
}

// Fetched reports whether the target path was already materialized.
func (l *FetchLog) Fetched(targetPath string) bool {
	_, ok := l.seen[targetPath]
	return ok
}

// MarkFetched durably records a successful materialization.
func (l *FetchLog) MarkFetched(targetPath string) error {
	if _, err := fmt.Fprintln(l.file, targetPath); err != nil {
		return fmt.Errorf("failed to append to fetch log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync fetch log: %w", err)
	}
	l.seen[targetPath] = struct{}{}
	return nil
}

// Close releases the underlying file.
func (l *FetchLog) Close() error {
	return l.file.Close()
}
