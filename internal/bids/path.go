// Package bids derives standardized BIDS-style destination paths from LORIS
// image metadata. Resolution is deterministic and side-effect-free: the
// resulting path doubles as the dedup key across crawl runs.
package bids

import (
	"fmt"
	"path"
	"strings"
)

// Extension is the fixed file extension for registered images.
const Extension = ".mnc"

// Entry is the canonical destination for one image record.
type Entry struct {
	TargetPath string // slash-separated, relative to the dataset root
	Filename   string
	Modality   string
}

// Resolve maps one record's metadata to its destination. Scan-type prefixes
// are matched case-insensitively, first match wins; unknown scan types land
// under misc with the literal scan type as suffix.
func Resolve(project, candidate, visit, scanType string) Entry {
	scan := strings.ToLower(scanType)

	var modality, suffix string
	switch {
	case strings.HasPrefix(scan, "t1"):
		modality, suffix = "anat", "T1w"
	case strings.HasPrefix(scan, "t2"):
		modality, suffix = "anat", "T2w"
	case strings.HasPrefix(scan, "fieldmap"):
		modality, suffix = "fmap", "epi"
	case strings.HasPrefix(scan, "dwi"):
		modality, suffix = "dwi", "dwi"
	default:
		modality, suffix = "misc", scan
	}

	subject := "sub-" + candidate
	session := "ses-" + visit
	filename := fmt.Sprintf("%s_%s_%s%s", subject, session, suffix, Extension)

	return Entry{
		TargetPath: path.Join(project, subject, session, modality, filename),
		Filename:   filename,
		Modality:   modality,
	}
}
