// Package domain trains and applies the market-domain classifier, the
// deepest pipeline of the four axes. Training chains chi-squared feature
// selection, per-class centroids with cosine similarities, truncated SVD,
// standardization and a class-balanced multinomial logistic regression.
// Every fitted stage persists together in one artifact, so inference can
// never observe a half-updated pipeline.
package domain

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
)

// PipelineArtifact is the single artifact name under the models directory.
const PipelineArtifact = "domain_pipeline"

const (
	maxSelectedFeatures = 3000
	maxComponents       = 150
	maxIterations       = 2000
)

// Pipeline is the complete fitted inference chain. RetainedColumns fixes the
// input space; the remaining stages replay in declaration order.
type Pipeline struct {
	RetainedColumns []string               `json:"retainedColumns"`
	Selector        *ml.SelectKBest        `json:"selector"`
	Centroids       *ml.CentroidSet        `json:"centroids"`
	SVD             *ml.TruncatedSVD       `json:"svd"`
	Scaler          *ml.StandardScaler     `json:"scaler"`
	Classifier      *ml.LogisticRegression `json:"classifier"`
	Encoder         *ml.LabelEncoder       `json:"encoder"`
}

// Validate rejects a pipeline with any missing stage. A partially written or
// hand-edited artifact must never reach inference.
func (p *Pipeline) Validate() error {
	switch {
	case p == nil,
		len(p.RetainedColumns) == 0,
		p.Selector == nil,
		p.Centroids == nil,
		p.SVD == nil,
		p.Scaler == nil,
		p.Classifier == nil,
		p.Encoder == nil || p.Encoder.NumClasses() == 0:
		return fmt.Errorf("%w: domain pipeline is missing fitted stages", common.ErrCorruptArtifact)
	}
	return nil
}

// CanonLabel normalizes a raw domain label: trimmed, lowercased, and empty
// values collapsed to "unknown". Labels written by hand survive this way.
func CanonLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return model.CategoryUnknown
	}
	return s
}

// Train fits the full pipeline on every document present in both the feature
// table and the label store. Unlabeled rows train as "unknown" rather than
// being dropped.
func Train(features *model.FeatureTable, labels *model.LabelSet) (*Pipeline, error) {
	set := ml.JoinFeatures(features, labels, model.AxisDomain, false)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents carry both features and labels", common.ErrNoOverlap)
	}
	for i, label := range set.Labels {
		set.Labels[i] = CanonLabel(label)
	}

	retained, x := dropZeroColumns(features.Terms, set.X)
	if len(retained) == 0 {
		return nil, fmt.Errorf("%w: every feature column sums to zero", common.ErrZeroVariance)
	}
	slog.Debug("dropped zero-sum feature columns",
		"axis", model.AxisDomain,
		"kept", len(retained),
		"dropped", len(features.Terms)-len(retained))

	encoder := ml.FitEncoder(set.Labels)
	y, err := encoder.Encode(set.Labels)
	if err != nil {
		return nil, err
	}

	k := min(maxSelectedFeatures, len(retained)-1)
	if k < 1 {
		k = 1
	}
	selector, err := ml.FitChi2(x, y, encoder.NumClasses(), k)
	if err != nil {
		return nil, err
	}
	selected := selector.Transform(x)

	centroids := ml.FitCentroids(selected, y, encoder.NumClasses())
	cosine := centroids.Similarities(selected)

	components := min(maxComponents, len(selector.Indices)-1)
	if components < 1 {
		components = 1
	}
	svd, err := ml.FitSVD(selected, components)
	if err != nil {
		return nil, err
	}
	reduced := svd.Transform(selected)

	scaler := ml.FitScaler(reduced)
	scaled := scaler.Transform(reduced)

	classifier, err := ml.FitLogistic(hstack(scaled, cosine), y, encoder.NumClasses(), ml.LogisticConfig{
		MaxIter:      maxIterations,
		LearningRate: ml.DefaultLogisticConfig().LearningRate,
		C:            1.0,
		Balanced:     true,
		Tol:          ml.DefaultLogisticConfig().Tol,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("trained domain pipeline",
		"documents", set.Len(),
		"retained", len(retained),
		"selected", len(selector.Indices),
		"components", components,
		"classes", encoder.NumClasses())

	return &Pipeline{
		RetainedColumns: retained,
		Selector:        selector,
		Centroids:       centroids,
		SVD:             svd,
		Scaler:          scaler,
		Classifier:      classifier,
		Encoder:         encoder,
	}, nil
}

// Predict replays the fitted pipeline over the feature table: select the
// retained columns (zero-filling absent ones), chi-squared selection,
// centroid similarities, SVD, scaling, then the classifier. The arg-max
// always wins; this axis deliberately has no "unknown" fallback.
func Predict(p *Pipeline, features *model.FeatureTable) (*model.PredictionTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	aligned, stats := features.Align(p.RetainedColumns)
	if stats.Injected > 0 {
		slog.Warn("feature table missing fitted columns, zero-filled",
			"axis", model.AxisDomain, "injected", stats.Injected)
	}
	ml.Sanitize(aligned.Rows)

	selected := p.Selector.Transform(aligned.Rows)
	cosine := p.Centroids.Similarities(selected)
	scaled := p.Scaler.Transform(p.SVD.Transform(selected))
	probs := p.Classifier.PredictProba(hstack(scaled, cosine))

	table := &model.PredictionTable{Axis: model.AxisDomain}
	for i, doc := range aligned.Docs {
		best := ml.ArgMax(probs[i])
		table.Predictions = append(table.Predictions, model.Prediction{
			Doc:        doc,
			Category:   p.Encoder.Class(best),
			Confidence: probs[i][best],
		})
	}
	return table, nil
}

// dropZeroColumns removes columns whose total over all rows is zero and
// returns the surviving column names with the narrowed matrix.
func dropZeroColumns(terms []string, x [][]float64) ([]string, [][]float64) {
	if len(x) == 0 {
		return nil, nil
	}
	sums := make([]float64, len(terms))
	for _, row := range x {
		for j, v := range row {
			sums[j] += v
		}
	}

	var keep []int
	var retained []string
	for j, sum := range sums {
		if sum > 0 {
			keep = append(keep, j)
			retained = append(retained, terms[j])
		}
	}

	narrowed := make([][]float64, len(x))
	for i, row := range x {
		out := make([]float64, len(keep))
		for pos, j := range keep {
			out[pos] = row[j]
		}
		narrowed[i] = out
	}
	return retained, narrowed
}

// hstack concatenates two row-aligned matrices column-wise.
func hstack(a, b [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, 0, len(a[i])+len(b[i]))
		row = append(row, a[i]...)
		row = append(row, b[i]...)
		out[i] = row
	}
	return out
}
