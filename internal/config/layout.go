// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Layout describes where the pipeline reads and writes its files. All paths
// are fixed relative to the three root directories so every command resolves
// the same corpus, feature table, labels, predictions and model artifacts.
type Layout struct {
	DataDir   string
	OutputDir string
	ModelsDir string
}

// DefaultLayout returns the layout used when nothing is configured.
func DefaultLayout() Layout {
	return Layout{
		DataDir:   "data",
		OutputDir: "output",
		ModelsDir: "models",
	}
}

// LoadLayout loads the directory layout from Viper, falling back to defaults.
// Values may contain ~ and $VAR references.
func LoadLayout() (Layout, error) {
	layout := DefaultLayout()

	if v := viper.GetString("paths.data_dir"); v != "" {
		layout.DataDir = ExpandPath(v)
	}
	if v := viper.GetString("paths.output_dir"); v != "" {
		layout.OutputDir = ExpandPath(v)
	}
	if v := viper.GetString("paths.models_dir"); v != "" {
		layout.ModelsDir = ExpandPath(v)
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}

	return layout, nil
}

// Validate checks that no root directory is blank.
func (l Layout) Validate() error {
	if l.DataDir == "" {
		return fmt.Errorf("data directory is not set")
	}
	if l.OutputDir == "" {
		return fmt.Errorf("output directory is not set")
	}
	if l.ModelsDir == "" {
		return fmt.Errorf("models directory is not set")
	}
	return nil
}

// DecksDir is where source deck files are dropped for ingestion.
func (l Layout) DecksDir() string {
	return filepath.Join(l.DataDir, "decks")
}

// TranslatedDir holds the normalized, translated text extracted from decks.
func (l Layout) TranslatedDir() string {
	return filepath.Join(l.DataDir, "processed", "translated")
}

// FeaturesPath is the TF-IDF feature table shared by every classifier.
func (l Layout) FeaturesPath() string {
	return filepath.Join(l.DataDir, "processed", "tfidf_vectors.csv")
}

// LabelsPath is the single label store with one row per document.
func (l Layout) LabelsPath() string {
	return filepath.Join(l.DataDir, "labeled.csv")
}

// PredictionsDir holds one prediction file per classification axis.
func (l Layout) PredictionsDir() string {
	return filepath.Join(l.OutputDir, "predictions")
}

// PredictionsPath is the prediction file for one axis.
func (l Layout) PredictionsPath(axis string) string {
	name := fmt.Sprintf("tfidf_vectors_with_%s_predictions.csv", axis)
	return filepath.Join(l.PredictionsDir(), name)
}

// ModelPath is the serialized artifact file for one fitted model component.
func (l Layout) ModelPath(name string) string {
	return filepath.Join(l.ModelsDir, name+".json")
}

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}
