package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/corpus"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/ml/country"
	"github.com/deckscore/deckscore/internal/ml/domain"
	"github.com/deckscore/deckscore/internal/ml/evaluate"
	"github.com/deckscore/deckscore/internal/ml/result"
	"github.com/deckscore/deckscore/internal/ml/tech"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/deckscore/deckscore/internal/storage"
	"github.com/deckscore/deckscore/internal/vectorizer"
)

// trainOrder is the axis order used when training everything in one run.
func trainOrder() []model.Axis {
	return []model.Axis{model.AxisResult, model.AxisCountry, model.AxisDomain, model.AxisTech}
}

// vectorizeStage fits the TF-IDF vectorizer over the translated corpus and
// writes the shared feature table.
func vectorizeStage(ctx context.Context, store *storage.FileStore) error {
	docs, err := corpus.Load(store.Layout().TranslatedDir())
	if err != nil {
		return common.Stage("", "load corpus", err)
	}

	table, err := vectorizer.New(vectorizer.DefaultConfig()).FitTransform(docs)
	if err != nil {
		return common.Stage("", "vectorize", err)
	}

	if err := store.SaveFeatures(ctx, table); err != nil {
		return common.Stage("", "save features", err)
	}
	slog.Info("Vectorized corpus", "documents", table.Len(), "terms", table.Dim())
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("vectorized %d documents into %d terms", table.Len(), table.Dim())))
	return nil
}

// trainAxis fits one axis on the shared feature table and persists its
// artifacts.
func trainAxis(ctx context.Context, store *storage.FileStore, features *model.FeatureTable, labels *model.LabelSet, axis model.Axis) error {
	switch axis {
	case model.AxisCountry:
		res, err := country.Train(features, labels)
		if err != nil {
			return common.Stage(axis.String(), "train", err)
		}
		if res.Report != nil {
			printReport(fmt.Sprintf("country cross-validation (%d folds)", res.Folds), res.Report)
		}
		if err := store.SaveArtifact(ctx, country.ModelArtifact, res.Model); err != nil {
			return common.Stage(axis.String(), "save model", err)
		}
		if err := store.SaveArtifact(ctx, country.EncoderArtifact, res.Encoder); err != nil {
			return common.Stage(axis.String(), "save encoder", err)
		}

	case model.AxisDomain:
		pipeline, err := domain.Train(features, labels)
		if err != nil {
			return common.Stage(axis.String(), "train", err)
		}
		if err := store.SaveArtifact(ctx, domain.PipelineArtifact, pipeline); err != nil {
			return common.Stage(axis.String(), "save model", err)
		}

	case model.AxisTech:
		res, err := tech.Train(features, labels)
		if err != nil {
			return common.Stage(axis.String(), "train", err)
		}
		printReport("tech holdout: hard", res.HardReport)
		printReport("tech holdout: soft", res.SoftReport)
		if err := store.SaveArtifact(ctx, tech.ModelArtifact, res.Model); err != nil {
			return common.Stage(axis.String(), "save model", err)
		}

	case model.AxisResult:
		res, err := result.Train(features, labels)
		if err != nil {
			return common.Stage(axis.String(), "train", err)
		}
		if res.Excluded > 0 {
			slog.Warn("Excluded labels outside the allowed outcome set",
				"axis", axis, "excluded", res.Excluded)
		}
		printReport("result in-sample report", res.Report)
		if err := store.SaveArtifact(ctx, result.ModelArtifact, res.Model); err != nil {
			return common.Stage(axis.String(), "save model", err)
		}

	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownAxis, axis)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("trained %s", axis)))
	return nil
}

// predictAxis loads one axis's fitted artifacts, scores the feature table
// and writes the prediction file.
func predictAxis(ctx context.Context, store *storage.FileStore, features *model.FeatureTable, axis model.Axis) error {
	var (
		table *model.PredictionTable
		err   error
	)

	switch axis {
	case model.AxisCountry:
		var m country.Model
		var encoder ml.LabelEncoder
		if err = store.LoadArtifact(ctx, country.ModelArtifact, &m); err == nil {
			err = store.LoadArtifact(ctx, country.EncoderArtifact, &encoder)
		}
		if err != nil {
			return common.Stage(axis.String(), "load model", err)
		}
		table, err = country.Predict(&m, &encoder, features)

	case model.AxisDomain:
		var pipeline domain.Pipeline
		if err = store.LoadArtifact(ctx, domain.PipelineArtifact, &pipeline); err != nil {
			return common.Stage(axis.String(), "load model", err)
		}
		table, err = domain.Predict(&pipeline, features)

	case model.AxisTech:
		var m tech.Model
		if err = store.LoadArtifact(ctx, tech.ModelArtifact, &m); err != nil {
			return common.Stage(axis.String(), "load model", err)
		}
		table, err = tech.Predict(&m, features)

	case model.AxisResult:
		var m result.Model
		if err = store.LoadArtifact(ctx, result.ModelArtifact, &m); err != nil {
			return common.Stage(axis.String(), "load model", err)
		}
		table, err = result.Predict(&m, features)

	default:
		return fmt.Errorf("%w: %s", common.ErrUnknownAxis, axis)
	}
	if err != nil {
		return common.Stage(axis.String(), "predict", err)
	}

	if err := store.SavePredictions(ctx, table); err != nil {
		return common.Stage(axis.String(), "save predictions", err)
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("predicted %s for %d documents", axis, table.Len())))
	return nil
}

// evaluateAxis scores one axis's saved predictions against the label store
// and renders the evaluation.
func evaluateAxis(ctx context.Context, store *storage.FileStore, labels *model.LabelSet, axis model.Axis) error {
	preds, err := store.LoadPredictions(ctx, axis)
	if err != nil {
		return common.Stage(axis.String(), "load predictions", err)
	}

	eval, err := evaluate.Predictions(preds, labels)
	if err != nil {
		return common.Stage(axis.String(), "evaluate", err)
	}

	fmt.Println()
	if err := cli.WriteEvaluation(os.Stdout, eval); err != nil {
		return common.Stage(axis.String(), "render", err)
	}
	return nil
}

// printReport shows a diagnostic training report under a styled title.
func printReport(title string, report *ml.Report) {
	if report == nil {
		return
	}
	fmt.Println()
	fmt.Println(cli.FormatTitle(title))
	fmt.Print(report.String())
}
