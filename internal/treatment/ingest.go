// Package treatment turns raw deck files into the translated corpus the
// vectorizer reads: text extraction, normalization, language detection and
// translation into English.
package treatment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/service"
)

// FallbackText replaces deck text that could not be extracted or translated.
// The document still gets a corpus entry so later stages see it.
const FallbackText = "none"

// Ingestor walks the decks directory and fills the translated corpus: one
// normalized English .txt per deck, reused untouched on later runs.
type Ingestor struct {
	store      service.Store
	extractor  service.TextExtractor
	translator service.Translator
	retry      service.RetryOptions
	progress   io.Writer
}

// Config wires an Ingestor. Translator may be nil when no translation
// backend is configured; non-English decks then keep their source language.
// Progress may be nil to disable the progress bar.
type Config struct {
	Store      service.Store
	Extractor  service.TextExtractor
	Translator service.Translator
	Retry      service.RetryOptions
	Progress   io.Writer
}

// NewIngestor creates an Ingestor from the given collaborators.
func NewIngestor(cfg Config) (*Ingestor, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("ingestor requires a store")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("ingestor requires a text extractor")
	}
	return &Ingestor{
		store:      cfg.Store,
		extractor:  cfg.Extractor,
		translator: cfg.Translator,
		retry:      cfg.Retry,
		progress:   cfg.Progress,
	}, nil
}

// Run processes every deck that has no cached translation yet. A deck whose
// extraction or translation fails degrades to FallbackText and the batch
// continues; only storage errors and context cancellation abort the run.
func (ing *Ingestor) Run(ctx context.Context) (service.IngestStats, error) {
	decks, err := ing.store.ListDecks(ctx)
	if err != nil {
		return service.IngestStats{}, err
	}

	stats := service.IngestStats{Total: len(decks)}
	if len(decks) == 0 {
		slog.Info("No decks to ingest")
		return stats, nil
	}

	bar := ing.newProgressBar(len(decks))

	for _, path := range decks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stem := deckStem(path)
		if ing.store.HasTranslation(stem) {
			stats.Skipped++
			advance(bar)
			continue
		}

		text := ing.deckText(ctx, path, &stats)
		if err := ing.store.SaveTranslation(ctx, stem, text); err != nil {
			return stats, fmt.Errorf("failed to save translation for %s: %w", stem, err)
		}
		stats.Processed++
		advance(bar)
	}

	slog.Info("Ingest complete",
		"total", stats.Total,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"translated", stats.Translated,
		"failed", stats.Failed)
	return stats, nil
}

// deckText extracts, normalizes and, when the deck is not in English,
// translates the text of one deck.
func (ing *Ingestor) deckText(ctx context.Context, path string, stats *service.IngestStats) string {
	deck := filepath.Base(path)

	raw, err := ing.extractor.ExtractText(ctx, path)
	if err != nil {
		slog.Warn("Failed to extract deck text", "deck", deck, "error", err)
		stats.Failed++
		return FallbackText
	}

	text := Normalize(raw)
	if text == "" {
		slog.Warn("Deck produced no text", "deck", deck)
		return FallbackText
	}

	det := DetectLanguage(text)
	if !det.NeedsTranslation {
		return text
	}

	if ing.translator == nil {
		slog.Warn("No translator configured, keeping source language",
			"deck", deck,
			"language", det.Language)
		return text
	}

	slog.Debug("Translating deck",
		"deck", deck,
		"language", det.Language,
		"reliable", det.Reliable)

	var translated string
	err = common.WithRetry(ctx, func() error {
		var translateErr error
		translated, translateErr = ing.translator.Translate(ctx, text)
		return translateErr
	}, ing.retry)
	if err != nil {
		slog.Warn("Failed to translate deck",
			"deck", deck,
			"language", det.Language,
			"error", err)
		stats.Failed++
		return FallbackText
	}

	stats.Translated++
	if clean := Normalize(translated); clean != "" {
		return clean
	}
	return FallbackText
}

// deckStem is the deck file name without its extension, the id shared by the
// translated corpus and every downstream table.
func deckStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (ing *Ingestor) newProgressBar(total int) *progressbar.ProgressBar {
	if ing.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ing.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Ingesting decks...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(ing.progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func advance(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	if err := bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}
