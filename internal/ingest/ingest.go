// Package ingest drives one incremental crawl run: enumeration, dedup, URL
// registration, manifest bookkeeping, and optional content download.
package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/loris-tools/loriscrawler/internal/bids"
	"github.com/loris-tools/loriscrawler/internal/datalad"
	"github.com/loris-tools/loriscrawler/internal/loris"
	"github.com/loris-tools/loriscrawler/internal/manifest"
)

// SaveMessage is the commit message for the terminal dataset save.
const SaveMessage = "Ingest LORIS images via API (multi-project, BIDS, incremental)"

// Runner holds the collaborators for one run. Everything is processed
// sequentially on the calling goroutine: the dataset backend is not safe for
// concurrent mutation, and the ordering register -> manifest append -> next
// record is what keeps the dedup set consistent with backend state.
type Runner struct {
	Client  *loris.Client
	Backend datalad.Backend

	// Manifest is the append side; Seen is the dedup set loaded at startup.
	Manifest *manifest.Appender
	Seen     map[string]struct{}

	// FetchLog is non-nil when content should be downloaded after
	// registration. It tracks which paths were actually materialized, so a
	// run that died between registration and download is repaired later.
	FetchLog *manifest.FetchLog
}

// Run processes every project in sorted order. Any registration or download
// failure aborts the run; re-running is safe because completed records are
// deduplicated via the manifest.
func (r *Runner) Run() error {
	projects, err := r.Client.ListProjects()
	if err != nil {
		return err
	}
	slog.Info("Found projects", "projects", strings.Join(projects, ", "))

	registered := 0
	skipped := 0

	for _, project := range projects {
		images, err := r.Client.ListImages(project)
		if err != nil {
			return fmt.Errorf("project %s: %w", project, err)
		}
		slog.Info("Fetched image list", "project", project, "images", len(images))

		for _, img := range images {
			entry := bids.Resolve(project, img.Candidate, img.Visit, img.ScanType)

			if _, ok := r.Seen[entry.TargetPath]; ok {
				slog.Debug("Already registered", "target", entry.TargetPath)
				skipped++
				// A prior run may have registered this path but died
				// before downloading it.
				if err := r.materialize(entry.TargetPath); err != nil {
					return err
				}
				continue
			}

			url := r.Client.ImageURL(img)
			slog.Info("Registering", "project", project, "candidate", img.Candidate, "visit", img.Visit, "target", entry.TargetPath)

			if err := r.Backend.RegisterURL(url, entry.TargetPath); err != nil {
				return fmt.Errorf("project %s candidate %s visit %s: %w", project, img.Candidate, img.Visit, err)
			}

			rec := manifest.Record{
				Project:    project,
				Candidate:  img.Candidate,
				Visit:      img.Visit,
				Filename:   entry.Filename,
				Modality:   entry.Modality,
				TargetPath: entry.TargetPath,
				URL:        url,
			}
			if err := r.Manifest.Append(rec); err != nil {
				return fmt.Errorf("project %s candidate %s visit %s: %w", project, img.Candidate, img.Visit, err)
			}
			r.Seen[entry.TargetPath] = struct{}{}
			registered++

			if err := r.materialize(entry.TargetPath); err != nil {
				return err
			}
		}
	}

	if err := r.Backend.Save(SaveMessage); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	slog.Info("Crawl complete", "registered", registered, "skipped", skipped)
	return nil
}

func (r *Runner) materialize(targetPath string) error {
	if r.FetchLog == nil || r.FetchLog.Fetched(targetPath) {
		return nil
	}

	slog.Info("Downloading", "target", targetPath)
	if err := r.Backend.Get(targetPath); err != nil {
		return err
	}
	return r.FetchLog.MarkFetched(targetPath)
}
