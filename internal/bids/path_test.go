package bids

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		scanType     string
		wantModality string
		wantTarget   string
	}{
		{
			name:         "t1 prefix maps to anat T1w",
			scanType:     "T1_MPRAGE",
			wantModality: "anat",
			wantTarget:   "loris/sub-123/ses-V1/anat/sub-123_ses-V1_T1w.mnc",
		},
		{
			name:         "t2 prefix maps to anat T2w",
			scanType:     "t2_flair",
			wantModality: "anat",
			wantTarget:   "loris/sub-123/ses-V1/anat/sub-123_ses-V1_T2w.mnc",
		},
		{
			name:         "fieldmap prefix maps to fmap epi",
			scanType:     "FieldMap_AP",
			wantModality: "fmap",
			wantTarget:   "loris/sub-123/ses-V1/fmap/sub-123_ses-V1_epi.mnc",
		},
		{
			name:         "dwi prefix maps to dwi",
			scanType:     "dwi_b1000",
			wantModality: "dwi",
			wantTarget:   "loris/sub-123/ses-V1/dwi/sub-123_ses-V1_dwi.mnc",
		},
		{
			name:         "unknown scan type lands in misc",
			scanType:     "localizer",
			wantModality: "misc",
			wantTarget:   "loris/sub-123/ses-V1/misc/sub-123_ses-V1_localizer.mnc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Resolve("loris", "123", "V1", tt.scanType)
			if entry.Modality != tt.wantModality {
				t.Errorf("Expected modality %s, got %s", tt.wantModality, entry.Modality)
			}
			if entry.TargetPath != tt.wantTarget {
				t.Errorf("Expected target %s, got %s", tt.wantTarget, entry.TargetPath)
			}
		})
	}
}

func TestResolvePrefixEquivalence(t *testing.T) {
	// Scan types sharing a matched prefix must resolve to the same target,
	// since the target path is the dedup key.
	a := Resolve("loris", "123", "V1", "t1_mprage_sag")
	b := Resolve("loris", "123", "V1", "T1_SPGR")

	if a.TargetPath != b.TargetPath {
		t.Errorf("Expected identical targets, got %s and %s", a.TargetPath, b.TargetPath)
	}
}

func TestResolveDeterministic(t *testing.T) {
	first := Resolve("proj", "999", "V2", "fieldmap_PA")
	for i := 0; i < 10; i++ {
		if got := Resolve("proj", "999", "V2", "fieldmap_PA"); got != first {
			t.Fatalf("Resolve is not deterministic: got %+v, want %+v", got, first)
		}
	}
}
