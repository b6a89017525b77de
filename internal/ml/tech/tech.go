// Package tech trains and applies the technology classifier. The tech label
// is really two overlapping binaries (a deck can be hardware, software or
// both), so training fits one class-balanced logistic head per target and
// prediction recombines the two verdicts.
package tech

import (
	"fmt"
	"log/slog"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
)

// ModelArtifact is the artifact name under the models directory.
const ModelArtifact = "tech_multilabel_model"

// Threshold is the positive-probability cutoff for each binary head.
const Threshold = 0.5

const (
	holdoutFraction = 0.3
	splitSeed       = 42
	maxIterations   = 2000
	regularization  = 2.0
)

// BinaryHead is one fitted target (hard or soft).
type BinaryHead struct {
	Classifier *ml.LogisticRegression `json:"classifier"`
	// Degenerate marks a fit that saw a single target value; such a head
	// always scores a positive probability of zero.
	Degenerate bool `json:"degenerate"`
}

// Model is the persisted classifier: both heads plus the feature columns
// they were trained on, one artifact.
type Model struct {
	FeatureNames []string    `json:"featureNames"`
	Hard         *BinaryHead `json:"hard"`
	Soft         *BinaryHead `json:"soft"`
}

// Result bundles one training run. The two holdout reports are diagnostic;
// the persisted model is always refitted on the full set.
type Result struct {
	Model      *Model
	HardReport *ml.Report
	SoftReport *ml.Report
}

// Train fits both binary heads. A 70/30 holdout stratified on the joint
// (hard,soft) pair estimates per-target quality first; the final heads then
// refit on every joined row.
func Train(features *model.FeatureTable, labels *model.LabelSet) (*Result, error) {
	if features.Dim() == 0 {
		return nil, fmt.Errorf("%w: feature table has no term columns", common.ErrNoFeatures)
	}

	set := ml.JoinFeatures(features, labels, model.AxisTech, true)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents carry both features and a tech label", common.ErrNoOverlap)
	}

	hard, soft := binaryTargets(set.Labels)
	strata := make([]string, len(set.Labels))
	for i := range strata {
		strata[i] = fmt.Sprintf("%d%d", hard[i], soft[i])
	}

	result := &Result{}
	trainIdx, testIdx := ml.StratifiedSplit(strata, holdoutFraction, splitSeed)
	if len(trainIdx) > 0 && len(testIdx) > 0 {
		result.HardReport = holdoutReport(set.X, hard, trainIdx, testIdx, "hard")
		result.SoftReport = holdoutReport(set.X, soft, trainIdx, testIdx, "soft")
	} else {
		slog.Info("holdout evaluation skipped, too few labeled documents",
			"axis", model.AxisTech, "documents", set.Len())
	}

	hardHead, err := fitHead(set.X, hard)
	if err != nil {
		return nil, err
	}
	softHead, err := fitHead(set.X, soft)
	if err != nil {
		return nil, err
	}
	result.Model = &Model{
		FeatureNames: append([]string(nil), features.Terms...),
		Hard:         hardHead,
		Soft:         softHead,
	}

	slog.Info("trained tech model",
		"documents", set.Len(),
		"features", features.Dim(),
		"hardDegenerate", hardHead.Degenerate,
		"softDegenerate", softHead.Degenerate)
	return result, nil
}

// Predict scores every row of the feature table: each head votes with the
// probability of its positive class, the 0.5 threshold decides presence, and
// the two verdicts combine to both/hard/soft/unknown. Confidence is the
// larger of the two probabilities.
func Predict(m *Model, features *model.FeatureTable) (*model.PredictionTable, error) {
	if m == nil || m.Hard == nil || m.Soft == nil {
		return nil, fmt.Errorf("%w: tech model artifact incomplete", common.ErrModelNotTrained)
	}

	aligned, stats := features.Align(m.FeatureNames)
	if stats.Injected > 0 || stats.Dropped > 0 {
		slog.Warn("feature table realigned to fitted vocabulary",
			"axis", model.AxisTech,
			"injected", stats.Injected,
			"dropped", stats.Dropped)
	}
	ml.Sanitize(aligned.Rows)

	hardProbs := m.Hard.positiveProbs(aligned.Rows)
	softProbs := m.Soft.positiveProbs(aligned.Rows)

	table := &model.PredictionTable{Axis: model.AxisTech}
	for i, doc := range aligned.Docs {
		table.Predictions = append(table.Predictions, model.Prediction{
			Doc:        doc,
			Category:   combine(hardProbs[i] >= Threshold, softProbs[i] >= Threshold),
			Confidence: max(hardProbs[i], softProbs[i]),
		})
	}
	return table, nil
}

// binaryTargets derives the two overlapping targets from the combined tech
// label: hard counts {hard, both}, soft counts {soft, both}.
func binaryTargets(labels []string) (hard, soft []int) {
	hard = make([]int, len(labels))
	soft = make([]int, len(labels))
	for i, label := range labels {
		if label == "hard" || label == "both" {
			hard[i] = 1
		}
		if label == "soft" || label == "both" {
			soft[i] = 1
		}
	}
	return hard, soft
}

// fitHead trains one binary head on the full matrix. A target with only one
// observed value cannot support a classifier and becomes a degenerate head.
func fitHead(x [][]float64, targets []int) (*BinaryHead, error) {
	positives := 0
	for _, t := range targets {
		positives += t
	}
	if positives == 0 || positives == len(targets) {
		return &BinaryHead{Degenerate: true}, nil
	}

	classifier, err := ml.FitLogistic(x, targets, 2, headConfig())
	if err != nil {
		return nil, err
	}
	return &BinaryHead{Classifier: classifier}, nil
}

// positiveProbs returns the probability of the positive class per row;
// degenerate heads score zero everywhere.
func (h *BinaryHead) positiveProbs(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if h.Degenerate || h.Classifier == nil {
		return out
	}
	probs := h.Classifier.PredictProba(x)
	for i := range probs {
		out[i] = probs[i][1]
	}
	return out
}

// holdoutReport fits a throwaway head on the training split and scores the
// held-out rows. Returns nil when the split degenerates to a single class.
func holdoutReport(x [][]float64, targets []int, trainIdx, testIdx []int, name string) *ml.Report {
	head, err := fitHead(ml.Subset(x, trainIdx), ml.SubsetInts(targets, trainIdx))
	if err != nil {
		slog.Warn("holdout fit failed", "axis", model.AxisTech, "target", name, "error", err)
		return nil
	}
	if head.Degenerate {
		slog.Info("holdout evaluation skipped, single-class target",
			"axis", model.AxisTech, "target", name)
		return nil
	}

	probs := head.positiveProbs(ml.Subset(x, testIdx))
	predicted := make([]int, len(probs))
	for i, p := range probs {
		if p >= Threshold {
			predicted[i] = 1
		}
	}
	return ml.NewReport(ml.SubsetInts(targets, testIdx), predicted, []string{"other", name})
}

// combine merges the two binary verdicts into the final category.
func combine(hard, soft bool) string {
	switch {
	case hard && soft:
		return "both"
	case hard:
		return "hard"
	case soft:
		return "soft"
	default:
		return model.CategoryUnknown
	}
}

// headConfig is the shared hyperparameter set for both binary heads.
func headConfig() ml.LogisticConfig {
	cfg := ml.DefaultLogisticConfig()
	cfg.MaxIter = maxIterations
	cfg.C = regularization
	cfg.Balanced = true
	return cfg
}
