// Package storage implements the file-backed persistence layer for the
// pipeline: semicolon-delimited CSV tables for features, labels and
// predictions, and JSON files for fitted model artifacts.
package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deckscore/deckscore/internal/config"
	"github.com/deckscore/deckscore/internal/service"
)

// delimiter used by every tabular file in the pipeline.
const delimiter = ';'

// FileStore is the on-disk implementation of service.Store. All writes go
// through a temp-file rename so a crash never leaves a half-written table.
type FileStore struct {
	committer service.Committer
	layout    config.Layout
}

// NopCommitter is the default Committer: it does nothing. Repository sync is
// opt-in.
type NopCommitter struct{}

// Commit implements service.Committer.
func (NopCommitter) Commit(_ context.Context, _, _ string) error {
	return nil
}

// New creates a FileStore over the given directory layout.
func New(layout config.Layout) *FileStore {
	return &FileStore{layout: layout, committer: NopCommitter{}}
}

// WithCommitter sets the committer notified after each successful write of a
// shared pipeline file.
func (s *FileStore) WithCommitter(c service.Committer) *FileStore {
	if c != nil {
		s.committer = c
	}
	return s
}

// Layout returns the directory layout the store was built with.
func (s *FileStore) Layout() config.Layout {
	return s.layout
}

// commit notifies the committer about a changed file. Sync failures are
// logged, not returned: the local write already succeeded and must not be
// rolled back because a remote was unreachable.
func (s *FileStore) commit(ctx context.Context, path, message string) {
	if err := s.committer.Commit(ctx, path, message); err != nil {
		slog.Warn("Failed to sync file to repository",
			"path", path,
			"error", err)
	}
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename. Parent directories are created as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// writeRecords renders records as a semicolon-delimited CSV and writes the
// result atomically.
func writeRecords(path string, records [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = delimiter
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// readRecords reads a semicolon-delimited CSV file in full.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("Failed to close file", "path", path, "error", closeErr)
		}
	}()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
