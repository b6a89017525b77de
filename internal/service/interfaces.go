// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/deckscore/deckscore/internal/model"
)

// Store defines the contract for the pipeline's persistence layer. Every
// command goes through it so the on-disk formats live in exactly one place.
type Store interface {
	// Feature table operations
	SaveFeatures(ctx context.Context, table *model.FeatureTable) error
	LoadFeatures(ctx context.Context) (*model.FeatureTable, error)

	// Label store operations
	LoadLabels(ctx context.Context) (*model.LabelSet, error)
	SaveLabels(ctx context.Context, labels *model.LabelSet) error

	// Prediction operations
	SavePredictions(ctx context.Context, table *model.PredictionTable) error
	LoadPredictions(ctx context.Context, axis model.Axis) (*model.PredictionTable, error)

	// Model artifact operations
	SaveArtifact(ctx context.Context, name string, artifact any) error
	LoadArtifact(ctx context.Context, name string, artifact any) error

	// Deck and translated corpus operations
	ListDecks(ctx context.Context) ([]string, error)
	HasTranslation(stem string) bool
	SaveTranslation(ctx context.Context, stem, text string) error

	// Workflow derivation
	DocumentStatuses(ctx context.Context) ([]model.DocumentStatus, error)
}

// TextExtractor pulls the raw text out of one source deck file.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Translator converts extracted deck text into English before vectorization.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Committer pushes an updated pipeline file to a shared repository after a
// write. Implementations decide the hosting mechanics; the pipeline only
// reports which file changed and why.
type Committer interface {
	Commit(ctx context.Context, path, message string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// IngestStats summarizes one ingest run over the decks directory.
type IngestStats struct {
	Total      int
	Processed  int
	Skipped    int
	Translated int
	Failed     int
}
