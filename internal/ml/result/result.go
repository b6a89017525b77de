// Package result trains and applies the screening-outcome classifier: a
// class-balanced random forest over the shared TF-IDF feature table. Only
// the four historical outcome labels are trainable; anything else in the
// label store is excluded without comment.
package result

import (
	"fmt"
	"log/slog"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
)

// ModelArtifact is the artifact name under the models directory.
const ModelArtifact = "result_rf_model"

const (
	forestTrees = 400
	forestSeed  = 42
)

// Model is the persisted classifier: the forest, its label encoder and the
// feature columns it was trained on, one artifact.
type Model struct {
	FeatureNames []string         `json:"featureNames"`
	Forest       *ml.RandomForest `json:"forest"`
	Encoder      *ml.LabelEncoder `json:"encoder"`
}

// Result bundles one training run. The in-sample report is diagnostic only;
// forests score their own training set close to perfectly.
type Result struct {
	Model  *Model
	Report *ml.Report
	// Excluded counts labeled rows outside the allowed outcome set.
	Excluded int
}

// Train fits the forest on every document whose result label is one of the
// allowed outcomes. Tree construction fans out across a worker pool; the
// fitted ensemble is identical regardless of parallelism.
func Train(features *model.FeatureTable, labels *model.LabelSet) (*Result, error) {
	if features.Dim() == 0 {
		return nil, fmt.Errorf("%w: feature table has no term columns", common.ErrNoFeatures)
	}

	set := ml.JoinFeatures(features, labels, model.AxisResult, true)
	excluded := filterAllowed(set)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents carry both features and an allowed result label", common.ErrNoOverlap)
	}

	encoder := ml.FitEncoder(set.Labels)
	y, err := encoder.Encode(set.Labels)
	if err != nil {
		return nil, err
	}

	forest, err := ml.FitForest(set.X, y, encoder.NumClasses(), ml.ForestConfig{
		Trees:    forestTrees,
		Balanced: true,
		Seed:     forestSeed,
	})
	if err != nil {
		return nil, err
	}

	predicted := make([]int, set.Len())
	for i, probs := range forest.PredictProba(set.X) {
		predicted[i] = ml.ArgMax(probs)
	}
	report := ml.NewReport(y, predicted, encoder.Classes)

	slog.Info("trained result model",
		"documents", set.Len(),
		"excluded", excluded,
		"trees", forestTrees,
		"classes", encoder.NumClasses())

	return &Result{
		Model: &Model{
			FeatureNames: append([]string(nil), features.Terms...),
			Forest:       forest,
			Encoder:      encoder,
		},
		Report:   report,
		Excluded: excluded,
	}, nil
}

// Predict scores every row of the feature table after aligning it to the
// fitted columns, keeping the most probable outcome and its probability.
func Predict(m *Model, features *model.FeatureTable) (*model.PredictionTable, error) {
	if m == nil || m.Forest == nil || m.Encoder == nil || m.Encoder.NumClasses() == 0 {
		return nil, fmt.Errorf("%w: result model artifact incomplete", common.ErrModelNotTrained)
	}

	aligned, stats := features.Align(m.FeatureNames)
	if stats.Injected > 0 || stats.Dropped > 0 {
		slog.Warn("feature table realigned to fitted vocabulary",
			"axis", model.AxisResult,
			"injected", stats.Injected,
			"dropped", stats.Dropped)
	}
	ml.Sanitize(aligned.Rows)

	probs := m.Forest.PredictProba(aligned.Rows)
	table := &model.PredictionTable{Axis: model.AxisResult}
	for i, doc := range aligned.Docs {
		best := ml.ArgMax(probs[i])
		table.Predictions = append(table.Predictions, model.Prediction{
			Doc:        doc,
			Category:   m.Encoder.Class(best),
			Confidence: probs[i][best],
		})
	}
	return table, nil
}

// filterAllowed narrows the training set to rows with an allowed outcome
// label, in place, and returns how many rows were excluded.
func filterAllowed(set *ml.TrainingSet) int {
	kept := 0
	for i, label := range set.Labels {
		if !model.AxisResult.ValidCategory(label) {
			continue
		}
		set.Docs[kept] = set.Docs[i]
		set.Labels[kept] = set.Labels[i]
		set.X[kept] = set.X[i]
		kept++
	}
	excluded := set.Len() - kept
	set.Docs = set.Docs[:kept]
	set.Labels = set.Labels[:kept]
	set.X = set.X[:kept]
	return excluded
}
