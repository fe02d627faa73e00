package crawlcmd

import (
	"testing"

	"github.com/loris-tools/loriscrawler/internal/manifest"
)

func TestBuildSummary(t *testing.T) {
	records := []manifest.Record{
		{Project: "loris", Candidate: "123", Modality: "anat"},
		{Project: "loris", Candidate: "123", Modality: "dwi"},
		{Project: "loris", Candidate: "456", Modality: "anat"},
		{Project: "other", Candidate: "123", Modality: "misc"},
	}

	summary := buildSummary("images_manifest.csv", records)

	if summary.TotalRecords != 4 {
		t.Errorf("Expected 4 records, got %d", summary.TotalRecords)
	}
	if summary.Projects["loris"] != 3 || summary.Projects["other"] != 1 {
		t.Errorf("Unexpected project counts: %v", summary.Projects)
	}
	if summary.Modalities["anat"] != 2 {
		t.Errorf("Expected 2 anat records, got %d", summary.Modalities["anat"])
	}
	// The same candidate number under two projects is two distinct candidates.
	if summary.Candidates != 3 {
		t.Errorf("Expected 3 candidates, got %d", summary.Candidates)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := buildSummary("images_manifest.csv", nil)
	if summary.TotalRecords != 0 {
		t.Errorf("Expected 0 records, got %d", summary.TotalRecords)
	}
	if len(summary.Projects) != 0 {
		t.Errorf("Expected no projects, got %v", summary.Projects)
	}
}
