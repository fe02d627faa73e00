package datalad

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitSkipsExistingDataset(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".datalad"), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	// An initialized dataset must be left alone; this would otherwise shell
	// out to datalad, which is not available in tests.
	d := NewDataset(dir)
	if err := d.Init(); err != nil {
		t.Errorf("Expected Init to be a no-op on existing dataset, got %v", err)
	}
}

func TestRegistrationErrorUnwrap(t *testing.T) {
	fake := NewFake()
	fake.FailRegister = map[string]error{"a/b.mnc": os.ErrPermission}

	err := fake.RegisterURL("https://example.org/img", "a/b.mnc")
	regErr, ok := err.(*RegistrationError)
	if !ok {
		t.Fatalf("Expected RegistrationError, got %T", err)
	}
	if regErr.Unwrap() != os.ErrPermission {
		t.Errorf("Expected wrapped ErrPermission, got %v", regErr.Unwrap())
	}
}
