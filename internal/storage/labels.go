package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

// LoadLabels reads the label store. Axis columns are located by name so the
// file survives column reordering; a missing axis column is an error.
func (s *FileStore) LoadLabels(_ context.Context) (*model.LabelSet, error) {
	path := s.layout.LabelsPath()
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: label store %s (run label first)", common.ErrNotFound, path)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: label store %s is empty", common.ErrNotFound, path)
	}

	header := records[0]
	if len(header) == 0 || header[0] != model.DocColumn {
		return nil, fmt.Errorf("%w: %s must start with a %q column", common.ErrMissingColumn, path, model.DocColumn)
	}
	columns := make(map[string]int, len(header))
	for j, name := range header {
		columns[name] = j
	}
	for _, axis := range model.AllAxes() {
		if _, ok := columns[axis.String()]; !ok {
			return nil, fmt.Errorf("%w: %s has no %q column", common.ErrMissingColumn, path, axis)
		}
	}

	labels := model.NewLabelSet()
	for _, record := range records[1:] {
		if len(record) == 0 || record[0] == "" {
			continue
		}
		row := model.LabelRow{Doc: record[0]}
		for _, axis := range model.AllAxes() {
			j := columns[axis.String()]
			if j < len(record) {
				_ = row.Set(axis, record[j])
			}
		}
		labels.Upsert(row)
	}

	return labels, nil
}

// SaveLabels writes the whole label store back in insertion order.
func (s *FileStore) SaveLabels(ctx context.Context, labels *model.LabelSet) error {
	header := []string{model.DocColumn}
	for _, axis := range model.AllAxes() {
		header = append(header, axis.String())
	}

	records := make([][]string, 0, labels.Len()+1)
	records = append(records, header)
	for _, row := range labels.Rows() {
		record := []string{row.Doc}
		for _, axis := range model.AllAxes() {
			record = append(record, row.Get(axis))
		}
		records = append(records, record)
	}

	path := s.layout.LabelsPath()
	if err := writeRecords(path, records); err != nil {
		return err
	}

	slog.Info("Saved label store", "path", path, "documents", labels.Len())
	s.commit(ctx, path, "Update labeled decks")

	return nil
}
