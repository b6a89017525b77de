package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

// SavePredictions writes one axis's prediction file: document id, predicted
// category and confidence, plus one probability column per category when the
// axis keeps full probability rows.
func (s *FileStore) SavePredictions(ctx context.Context, table *model.PredictionTable) error {
	header := []string{model.DocColumn, table.Axis.PredictionColumn(), model.ConfidenceColumn}
	for _, class := range table.Classes {
		header = append(header, model.ProbabilityColumn(class))
	}

	records := make([][]string, 0, table.Len()+1)
	records = append(records, header)
	for _, p := range table.Predictions {
		record := []string{p.Doc, p.Category, formatFloat(p.Confidence)}
		for _, class := range table.Classes {
			record = append(record, formatFloat(p.Probabilities[class]))
		}
		records = append(records, record)
	}

	path := s.layout.PredictionsPath(table.Axis.String())
	if err := writeRecords(path, records); err != nil {
		return err
	}

	slog.Info("Saved predictions",
		"axis", table.Axis,
		"path", path,
		"documents", table.Len())
	s.commit(ctx, path, fmt.Sprintf("Update %s prediction results", table.Axis))

	return nil
}

// LoadPredictions reads one axis's prediction file back.
func (s *FileStore) LoadPredictions(_ context.Context, axis model.Axis) (*model.PredictionTable, error) {
	path := s.layout.PredictionsPath(axis.String())
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: predictions for %s (run predict first)", common.ErrNotFound, axis)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: prediction file %s is empty", common.ErrNotFound, path)
	}

	header := records[0]
	docCol, predictedCol, confidenceCol := -1, -1, -1
	probCols := make(map[int]string)
	for j, name := range header {
		switch {
		case name == model.DocColumn:
			docCol = j
		case name == axis.PredictionColumn():
			predictedCol = j
		case name == model.ConfidenceColumn:
			confidenceCol = j
		case strings.HasPrefix(name, "proba_"):
			probCols[j] = strings.TrimPrefix(name, "proba_")
		}
	}
	if docCol < 0 {
		return nil, fmt.Errorf("%w: %s has no %q column", common.ErrMissingColumn, path, model.DocColumn)
	}
	if predictedCol < 0 {
		return nil, fmt.Errorf("%w: %s has no %q column", common.ErrMissingColumn, path, axis.PredictionColumn())
	}

	table := &model.PredictionTable{Axis: axis}
	for j := range header {
		if class, ok := probCols[j]; ok {
			table.Classes = append(table.Classes, class)
		}
	}

	for _, record := range records[1:] {
		if len(record) <= docCol || record[docCol] == "" {
			continue
		}
		p := model.Prediction{Doc: record[docCol]}
		if predictedCol < len(record) {
			p.Category = record[predictedCol]
		}
		if confidenceCol >= 0 && confidenceCol < len(record) {
			p.Confidence = parseFloatOrZero(record[confidenceCol])
		}
		if len(probCols) > 0 {
			p.Probabilities = make(map[string]float64, len(probCols))
			for j, class := range probCols {
				if j < len(record) {
					p.Probabilities[class] = parseFloatOrZero(record[j])
				}
			}
		}
		table.Predictions = append(table.Predictions, p)
	}

	slog.Debug("Loaded predictions", "axis", axis, "documents", table.Len())

	return table, nil
}

func parseFloatOrZero(cell string) float64 {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}
