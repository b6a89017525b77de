// Package country trains and applies the country-of-origin classifier: a
// class-balanced gradient-boosted tree ensemble over the shared TF-IDF
// feature table, with an optional cross-validated diagnostic report.
package country

import (
	"fmt"
	"log/slog"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
)

// Artifact names under the models directory.
const (
	ModelArtifact   = "country_gb_model"
	EncoderArtifact = "country_label_encoder"
)

// UnknownThreshold is the minimum winning probability needed to commit to a
// country; anything below it predicts "unknown".
const UnknownThreshold = 0.3

const (
	boostingRounds = 200
	learningRate   = 0.1
	cvSeed         = 42
	maxFolds       = 3
)

// Model is the persisted classifier: the fitted ensemble plus the exact
// feature columns it was trained on.
type Model struct {
	FeatureNames []string             `json:"featureNames"`
	Boosting     *ml.GradientBoosting `json:"boosting"`
}

// Result bundles one training run. Model and Encoder persist as separate
// artifacts; the diagnostic report is display-only.
type Result struct {
	Model   *Model
	Encoder *ml.LabelEncoder
	// Report holds the cross-validated diagnostic, nil when CV was skipped
	// or failed.
	Report *ml.Report
	// Folds is the CV fold count actually used, 0 when skipped.
	Folds int
}

// Train fits the classifier on every document that has both a feature row
// and a country label. When the smallest class has at least two members, a
// stratified cross-validation estimates out-of-sample quality first; CV
// problems are logged and never abort training. The final model always fits
// on all joined rows.
func Train(features *model.FeatureTable, labels *model.LabelSet) (*Result, error) {
	if features.Dim() == 0 {
		return nil, fmt.Errorf("%w: feature table has no term columns", common.ErrNoFeatures)
	}

	set := ml.JoinFeatures(features, labels, model.AxisCountry, true)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents carry both features and a country label", common.ErrNoOverlap)
	}
	if err := checkVariance(set.X); err != nil {
		return nil, err
	}

	encoder := ml.FitEncoder(set.Labels)
	y, err := encoder.Encode(set.Labels)
	if err != nil {
		return nil, err
	}

	cfg := ml.BoostingConfig{
		Rounds:       boostingRounds,
		LearningRate: learningRate,
		Balanced:     true,
	}
	result := &Result{Encoder: encoder}

	if folds := cvFolds(y, encoder.NumClasses()); folds >= 2 {
		predicted, err := ml.CrossValPredict(set.X, y, folds, cvSeed, func(x [][]float64, y []int) (ml.Classifier, error) {
			return ml.FitBoosting(x, y, encoder.NumClasses(), cfg)
		})
		if err != nil {
			slog.Warn("cross-validation failed, training on the full set anyway",
				"axis", model.AxisCountry, "error", err)
		} else {
			result.Report = ml.NewReport(y, predicted, encoder.Classes)
			result.Folds = folds
		}
	} else {
		slog.Info("cross-validation skipped, smallest class has fewer than 2 samples",
			"axis", model.AxisCountry)
	}

	boosting, err := ml.FitBoosting(set.X, y, encoder.NumClasses(), cfg)
	if err != nil {
		return nil, err
	}
	result.Model = &Model{
		FeatureNames: append([]string(nil), features.Terms...),
		Boosting:     boosting,
	}

	slog.Info("trained country model",
		"documents", set.Len(),
		"features", features.Dim(),
		"classes", encoder.NumClasses())
	return result, nil
}

// Predict scores every row of the feature table. The table is first aligned
// to the model's fitted columns; the winning class below UnknownThreshold
// yields "unknown". The full per-class probability row is kept for audit.
func Predict(m *Model, encoder *ml.LabelEncoder, features *model.FeatureTable) (*model.PredictionTable, error) {
	if m == nil || m.Boosting == nil || encoder == nil || encoder.NumClasses() == 0 {
		return nil, fmt.Errorf("%w: country model artifacts incomplete", common.ErrModelNotTrained)
	}

	aligned, stats := features.Align(m.FeatureNames)
	if stats.Injected > 0 || stats.Dropped > 0 {
		slog.Warn("feature table realigned to fitted vocabulary",
			"axis", model.AxisCountry,
			"injected", stats.Injected,
			"dropped", stats.Dropped)
	}
	ml.Sanitize(aligned.Rows)

	probs := m.Boosting.PredictProba(aligned.Rows)
	table := &model.PredictionTable{
		Axis:    model.AxisCountry,
		Classes: append([]string(nil), encoder.Classes...),
	}
	for i, doc := range aligned.Docs {
		best := ml.ArgMax(probs[i])
		confidence := probs[i][best]
		category := encoder.Class(best)
		if confidence < UnknownThreshold {
			category = model.CategoryUnknown
		}

		probabilities := make(map[string]float64, encoder.NumClasses())
		for c, class := range encoder.Classes {
			probabilities[class] = probs[i][c]
		}
		table.Predictions = append(table.Predictions, model.Prediction{
			Doc:           doc,
			Category:      category,
			Probabilities: probabilities,
			Confidence:    confidence,
		})
	}
	return table, nil
}

// cvFolds returns min(3, smallest class count) when every class has at
// least two members, otherwise 0.
func cvFolds(y []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, c := range y {
		counts[c]++
	}
	minCount := len(y)
	for _, count := range counts {
		if count < minCount {
			minCount = count
		}
	}
	if minCount < 2 {
		return 0
	}
	if minCount < maxFolds {
		return minCount
	}
	return maxFolds
}

// checkVariance rejects a training matrix whose columns all sum to zero.
func checkVariance(x [][]float64) error {
	for _, row := range x {
		for _, v := range row {
			if v != 0 {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: every feature column sums to zero", common.ErrZeroVariance)
}
