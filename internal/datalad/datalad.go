// Package datalad drives the DataLad and git-annex command line tools for a
// single dataset directory. The Backend interface is the narrow surface the
// ingest pipeline depends on, so tests can swap in an in-memory fake.
package datalad

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Backend is the version-controlled content store the crawl registers images
// into. Registration records a pointer only; content is fetched lazily by Get.
type Backend interface {
	// Init creates the dataset if it does not exist yet. Idempotent.
	Init() error
	// ConfigureAuth arranges for future content fetches to present the
	// bearer token to the remote host.
	ConfigureAuth(token string) error
	// RegisterURL records the remote URL under the target path without
	// fetching content.
	RegisterURL(url, targetPath string) error
	// Get materializes the content of a previously registered path.
	Get(targetPath string) error
	// Save commits every change made this run under one message.
	Save(message string) error
}

// RegistrationError reports a rejected register call. The run aborts on it,
// leaving manifest and dataset consistent up to the previous record.
type RegistrationError struct {
	URL        string
	TargetPath string
	Output     string
	Err        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %s as %s: %v", e.URL, e.TargetPath, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// MaterializationError reports a failed content fetch for an already
// registered path.
type MaterializationError struct {
	TargetPath string
	Output     string
	Err        error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.TargetPath, e.Err)
}

func (e *MaterializationError) Unwrap() error {
	return e.Err
}

// Dataset is the real Backend, shelling out to datalad and git-annex.
type Dataset struct {
	Dir string
	env []string
}

// NewDataset returns a Dataset rooted at dir.
func NewDataset(dir string) *Dataset {
	return &Dataset{Dir: dir, env: os.Environ()}
}

// Init creates the DataLad dataset unless a .datalad directory already marks
// it as initialized.
func (d *Dataset) Init() error {
	if _, err := os.Stat(filepath.Join(d.Dir, ".datalad")); err == nil {
		return nil
	}

	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	slog.Info("Creating DataLad dataset", "path", d.Dir)
	if _, err := d.run("", "datalad", "create", "-c", "text2git", d.Dir); err != nil {
		return err
	}
	return nil
}

// ConfigureAuth points git-annex at the bearer token. The token has to live
// in the repo config and child environment because annex resolves URLs
// lazily, long after this process decided which URLs to register.
func (d *Dataset) ConfigureAuth(token string) error {
	if _, err := d.run(d.Dir, "git", "config", "annex.security.allowed-http-addresses", "all"); err != nil {
		return err
	}
	if _, err := d.run(d.Dir, "git", "config", "annex.http-headers", "Authorization: Bearer "+token); err != nil {
		return err
	}
	d.env = append(os.Environ(), "GIT_ANNEX_URL_AUTHORIZATION=Bearer "+token)
	return nil
}

// RegisterURL records url under targetPath with git-annex. --fast --relaxed
// keeps this a pointer-only operation: no content is downloaded and no
// content hash is pinned.
func (d *Dataset) RegisterURL(url, targetPath string) error {
	relTarget := filepath.FromSlash(targetPath)

	if err := os.MkdirAll(filepath.Join(d.Dir, filepath.Dir(relTarget)), 0755); err != nil {
		return &RegistrationError{URL: url, TargetPath: targetPath, Err: err}
	}

	out, err := d.run(d.Dir, "git", "annex", "addurl", url, "--file", relTarget, "--fast", "--relaxed")
	if err != nil {
		return &RegistrationError{URL: url, TargetPath: targetPath, Output: out, Err: err}
	}
	return nil
}

// Get materializes a registered path.
func (d *Dataset) Get(targetPath string) error {
	out, err := d.run(d.Dir, "datalad", "get", filepath.FromSlash(targetPath))
	if err != nil {
		return &MaterializationError{TargetPath: targetPath, Output: out, Err: err}
	}
	return nil
}

// Save commits all changes made this run.
func (d *Dataset) Save(message string) error {
	if _, err := d.run(d.Dir, "datalad", "save", "-m", message); err != nil {
		return err
	}
	return nil
}

func (d *Dataset) run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = d.env

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, output)
		}
		return output, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return output, nil
}
