package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

// DocumentStatuses derives the workflow state of every document the pipeline
// has ever seen: dropped decks, labeled rows, vectorized rows and per-axis
// predictions. Files that do not exist yet simply contribute nothing.
func (s *FileStore) DocumentStatuses(ctx context.Context) ([]model.DocumentStatus, error) {
	statuses := make(map[string]*model.DocumentStatus)
	ensure := func(doc string) *model.DocumentStatus {
		if st, ok := statuses[doc]; ok {
			return st
		}
		st := &model.DocumentStatus{Doc: doc}
		statuses[doc] = st
		return st
	}

	decks, err := s.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, path := range decks {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		ensure(stem + ".pdf")
	}

	labels, err := s.LoadLabels(ctx)
	switch {
	case err == nil:
		for _, row := range labels.Rows() {
			st := ensure(row.Doc)
			for _, axis := range model.AllAxes() {
				if row.Get(axis) != "" {
					st.Labeled = true
					break
				}
			}
		}
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	features, err := s.LoadFeatures(ctx)
	switch {
	case err == nil:
		for _, doc := range features.Docs {
			ensure(doc).Vectorized = true
		}
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	for _, axis := range model.AllAxes() {
		predictions, predErr := s.LoadPredictions(ctx, axis)
		switch {
		case predErr == nil:
			for _, p := range predictions.Predictions {
				st := ensure(p.Doc)
				st.PredictedAxes = append(st.PredictedAxes, axis)
			}
		case !errors.Is(predErr, common.ErrNotFound):
			return nil, predErr
		}
	}

	result := make([]model.DocumentStatus, 0, len(statuses))
	for _, st := range statuses {
		st.State = model.DeriveState(st.Labeled, st.Vectorized, len(st.PredictedAxes) > 0)
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Doc < result[j].Doc })

	return result, nil
}
