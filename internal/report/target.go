package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gradebook-extract/internal/config"
)

// Target is where the report lands. File targets stage into a
// temporary file beside the final path and only replace it on Publish,
// so a run that dies mid-extraction never damages the previous report.
// The stdout target writes directly and Publish is a no-op.
type Target struct {
	stdout    bool
	finalPath string
	tmp       *os.File
	published bool
}

// Open prepares the destination at path. The literal STDOUT
// (case-insensitive) selects standard output.
func Open(path string) (*Target, error) {
	if strings.EqualFold(strings.TrimSpace(path), config.StdoutTarget) {
		return &Target{stdout: true}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	return &Target{
		finalPath: path,
		tmp:       tmp,
	}, nil
}

func (t *Target) IsStdout() bool {
	return t.stdout
}

func (t *Target) Writer() io.Writer {
	if t.stdout {
		return os.Stdout
	}
	return t.tmp
}

// Path returns the final destination path, or STDOUT.
func (t *Target) Path() string {
	if t.stdout {
		return config.StdoutTarget
	}
	return t.finalPath
}

// Publish closes the staging file and renames it onto the final path.
// The rename replaces any previous report atomically; until it happens
// the previous report stays untouched.
func (t *Target) Publish() error {
	if t.stdout || t.published {
		return nil
	}
	t.published = true

	if err := t.tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Rename(t.tmp.Name(), t.finalPath); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	return nil
}

// Discard removes the staging file without touching the final path.
// Only used when the run aborts before anything was written.
func (t *Target) Discard() {
	if t.stdout || t.published {
		return
	}
	t.published = true
	t.tmp.Close()
	os.Remove(t.tmp.Name())
}
