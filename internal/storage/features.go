package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

// SaveFeatures writes the TF-IDF feature table. The first column is the
// document id; the remaining columns are the vocabulary terms in table order.
func (s *FileStore) SaveFeatures(ctx context.Context, table *model.FeatureTable) error {
	records := make([][]string, 0, table.Len()+1)

	header := make([]string, 0, table.Dim()+1)
	header = append(header, model.DocColumn)
	header = append(header, table.Terms...)
	records = append(records, header)

	for i, doc := range table.Docs {
		row := make([]string, 0, table.Dim()+1)
		row = append(row, doc)
		for _, v := range table.Row(i) {
			row = append(row, formatFloat(v))
		}
		records = append(records, row)
	}

	path := s.layout.FeaturesPath()
	if err := writeRecords(path, records); err != nil {
		return err
	}

	slog.Info("Saved feature table",
		"path", path,
		"documents", table.Len(),
		"terms", table.Dim())
	s.commit(ctx, path, "Update TF-IDF feature table")

	return nil
}

// LoadFeatures reads the TF-IDF feature table back. Cells that do not parse
// as numbers are coerced to zero so one stray value cannot poison a whole
// training run.
func (s *FileStore) LoadFeatures(_ context.Context) (*model.FeatureTable, error) {
	path := s.layout.FeaturesPath()
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: feature table %s (run vectorize first)", common.ErrNotFound, path)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: feature table %s is empty", common.ErrNotFound, path)
	}

	header := records[0]
	if len(header) == 0 || header[0] != model.DocColumn {
		return nil, fmt.Errorf("%w: %s must start with a %q column", common.ErrMissingColumn, path, model.DocColumn)
	}

	table := model.NewFeatureTable(header[1:])
	coerced := 0
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("feature table %s: row for %q has %d fields, want %d",
				path, record[0], len(record), len(header))
		}
		row := make([]float64, len(record)-1)
		for j, cell := range record[1:] {
			v, parseErr := strconv.ParseFloat(cell, 64)
			if parseErr != nil {
				coerced++
				v = 0
			}
			row[j] = v
		}
		if err := table.Append(record[0], row); err != nil {
			return nil, fmt.Errorf("feature table %s: %w", path, err)
		}
	}

	if coerced > 0 {
		slog.Warn("Coerced non-numeric feature cells to zero",
			"path", path,
			"cells", coerced)
	}

	return table, nil
}

// formatFloat renders a float compactly without losing precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
