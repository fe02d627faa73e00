// Package manifest persists the append-only ledger of registered images.
// The manifest CSV, if present, is the sole source of dedup truth across
// runs: rows are appended one at a time, flushed to disk before the crawl
// moves on, and never rewritten or reordered.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrCorrupt is returned when an existing manifest cannot be trusted as dedup
// state. The crawl refuses to guess and aborts instead.
var ErrCorrupt = errors.New("manifest is corrupt")

var columns = []string{"project", "candidate", "visit", "filename", "modality", "target_path", "url"}

// Record is one row of the manifest: a single successfully registered image.
type Record struct {
	Project    string
	Candidate  string
	Visit      string
	Filename   string
	Modality   string
	TargetPath string
	URL        string
}

// ReadAll reads every row of an existing manifest file.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	if _, ok := index["target_path"]; !ok {
		return nil, fmt.Errorf("%w: header is missing target_path", ErrCorrupt)
	}

	field := func(row []string, name string) string {
		if i, ok := index[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := Record{
			Project:    field(row, "project"),
			Candidate:  field(row, "candidate"),
			Visit:      field(row, "visit"),
			Filename:   field(row, "filename"),
			Modality:   field(row, "modality"),
			TargetPath: field(row, "target_path"),
			URL:        field(row, "url"),
		}
		if rec.TargetPath == "" {
			return nil, fmt.Errorf("%w: row %d is missing target_path", ErrCorrupt, n+2)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Load builds the dedup set from a prior manifest. A missing file yields an
// empty set: nothing has been registered yet.
func Load(path string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return seen, nil
	}

	records, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		seen[rec.TargetPath] = struct{}{}
	}

	return seen, nil
}

// Appender writes manifest rows, one durable row at a time. The file is
// opened lazily on the first append, and the header is written only when the
// manifest did not previously exist, so an all-skip run leaves no trace.
type Appender struct {
	path string
	file *os.File
	w    *csv.Writer
}

// Open prepares an appender for the given manifest path.
func Open(path string) *Appender {
	return &Appender{path: path}
}

// Append writes one row and forces it to disk before returning, so that a
// crash cannot leave a backend registration unrecorded.
func (a *Appender) Append(rec Record) error {
	if a.file == nil {
		if err := a.open(); err != nil {
			return err
		}
	}

	row := []string{rec.Project, rec.Candidate, rec.Visit, rec.Filename, rec.Modality, rec.TargetPath, rec.URL}
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("failed to write manifest row: %w", err)
	}

	return a.flush()
}

func (a *Appender) open() error {
	_, statErr := os.Stat(a.path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open manifest for append: %w", err)
	}

	a.file = f
	a.w = csv.NewWriter(f)

	if writeHeader {
		if err := a.w.Write(columns); err != nil {
			return fmt.Errorf("failed to write manifest header: %w", err)
		}
		return a.flush()
	}

	return nil
}

func (a *Appender) flush() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync manifest: %w", err)
	}
	return nil
}

// Close releases the underlying file. Safe to call when nothing was appended.
func (a *Appender) Close() error {
	if a.file == nil {
		return nil
	}
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		a.file.Close()
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	return a.file.Close()
}

// FetchLogPath derives the materialization sidecar path from the manifest
// path, e.g. images_manifest.csv -> images_manifest.fetched.
func FetchLogPath(manifestPath string) string {
	return strings.TrimSuffix(manifestPath, filepath.Ext(manifestPath)) + ".fetched"
}
