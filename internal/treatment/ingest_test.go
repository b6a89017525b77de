package treatment

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckscore/deckscore/internal/config"
	"github.com/deckscore/deckscore/internal/service"
	"github.com/deckscore/deckscore/internal/storage"
)

const englishDeck = "our platform helps investors screen early stage companies " +
	"and track the growth of their portfolio across european markets"

const frenchDeck = "notre société développe une plateforme de gestion de " +
	"l'énergie renouvelable pour les marchés européens et nous recherchons un " +
	"financement pour accélérer notre croissance"

type stubExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (s *stubExtractor) ExtractText(_ context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if err := s.errs[name]; err != nil {
		return "", err
	}
	return s.texts[name], nil
}

// stubTranslator fails its first failures calls, then answers with result.
type stubTranslator struct {
	calls    int
	failures int
	result   string
}

func (s *stubTranslator) Translate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("translator offline")
	}
	return s.result, nil
}

func newIngestStore(t *testing.T, decks ...string) *storage.FileStore {
	t.Helper()
	root := t.TempDir()
	layout := config.Layout{
		DataDir:   filepath.Join(root, "data"),
		OutputDir: filepath.Join(root, "output"),
		ModelsDir: filepath.Join(root, "models"),
	}
	require.NoError(t, os.MkdirAll(layout.DecksDir(), 0o755))
	for _, deck := range decks {
		path := filepath.Join(layout.DecksDir(), deck)
		require.NoError(t, os.WriteFile(path, []byte("raw bytes"), 0o644))
	}
	return storage.New(layout)
}

func readTranslation(t *testing.T, store *storage.FileStore, stem string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(store.Layout().TranslatedDir(), stem+".txt"))
	require.NoError(t, err)
	return string(data)
}

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestIngestor_ProcessesEnglishDecks(t *testing.T) {
	store := newIngestStore(t, "alpha.pdf", "beta.pdf")
	var progress bytes.Buffer
	ingestor, err := NewIngestor(Config{
		Store: store,
		Extractor: &stubExtractor{texts: map[string]string{
			"alpha.pdf": "Alpha: " + englishDeck,
			"beta.pdf":  "Beta: " + englishDeck,
		}},
		Progress: &progress,
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 2, Processed: 2}, stats)
	assert.Equal(t, "alpha "+englishDeck, readTranslation(t, store, "alpha"))
	assert.Equal(t, "beta "+englishDeck, readTranslation(t, store, "beta"))
	assert.NotEmpty(t, progress.String())
}

func TestIngestor_SkipsExistingTranslations(t *testing.T) {
	store := newIngestStore(t, "alpha.pdf", "beta.pdf")
	require.NoError(t, store.SaveTranslation(context.Background(), "alpha", "cached text"))
	ingestor, err := NewIngestor(Config{
		Store:     store,
		Extractor: &stubExtractor{texts: map[string]string{"beta.pdf": englishDeck}},
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 2, Processed: 1, Skipped: 1}, stats)
	assert.Equal(t, "cached text", readTranslation(t, store, "alpha"))
}

func TestIngestor_TranslatesNonEnglishDecks(t *testing.T) {
	store := newIngestStore(t, "gamma.pdf")
	translator := &stubTranslator{result: "Our Company Builds a Renewable Energy Management Platform!"}
	ingestor, err := NewIngestor(Config{
		Store:      store,
		Extractor:  &stubExtractor{texts: map[string]string{"gamma.pdf": frenchDeck}},
		Translator: translator,
		Retry:      fastRetry(2),
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 1, Processed: 1, Translated: 1}, stats)
	assert.Equal(t, 1, translator.calls)
	assert.Equal(t, "our company builds a renewable energy management platform",
		readTranslation(t, store, "gamma"))
}

func TestIngestor_RetriesFlakyTranslator(t *testing.T) {
	store := newIngestStore(t, "gamma.pdf")
	translator := &stubTranslator{failures: 1, result: "renewable energy platform"}
	ingestor, err := NewIngestor(Config{
		Store:      store,
		Extractor:  &stubExtractor{texts: map[string]string{"gamma.pdf": frenchDeck}},
		Translator: translator,
		Retry:      fastRetry(3),
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, translator.calls)
	assert.Equal(t, service.IngestStats{Total: 1, Processed: 1, Translated: 1}, stats)
	assert.Equal(t, "renewable energy platform", readTranslation(t, store, "gamma"))
}

func TestIngestor_TranslationFailureWritesFallback(t *testing.T) {
	store := newIngestStore(t, "gamma.pdf")
	translator := &stubTranslator{failures: 10}
	ingestor, err := NewIngestor(Config{
		Store:      store,
		Extractor:  &stubExtractor{texts: map[string]string{"gamma.pdf": frenchDeck}},
		Translator: translator,
		Retry:      fastRetry(2),
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 1, Processed: 1, Failed: 1}, stats)
	assert.Equal(t, FallbackText, readTranslation(t, store, "gamma"))
}

func TestIngestor_ExtractionFailureWritesFallback(t *testing.T) {
	store := newIngestStore(t, "broken.pdf", "fine.pdf")
	ingestor, err := NewIngestor(Config{
		Store: store,
		Extractor: &stubExtractor{
			texts: map[string]string{"fine.pdf": englishDeck},
			errs:  map[string]error{"broken.pdf": errors.New("unreadable pdf")},
		},
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 2, Processed: 2, Failed: 1}, stats)
	assert.Equal(t, FallbackText, readTranslation(t, store, "broken"))
	assert.Equal(t, englishDeck, readTranslation(t, store, "fine"))
}

func TestIngestor_EmptyTextWritesFallback(t *testing.T) {
	store := newIngestStore(t, "blank.pdf")
	ingestor, err := NewIngestor(Config{
		Store:     store,
		Extractor: &stubExtractor{texts: map[string]string{"blank.pdf": "?!\n\t "}},
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 1, Processed: 1}, stats)
	assert.Equal(t, FallbackText, readTranslation(t, store, "blank"))
}

func TestIngestor_KeepsSourceLanguageWithoutTranslator(t *testing.T) {
	store := newIngestStore(t, "gamma.pdf")
	ingestor, err := NewIngestor(Config{
		Store:     store,
		Extractor: &stubExtractor{texts: map[string]string{"gamma.pdf": frenchDeck}},
	})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{Total: 1, Processed: 1}, stats)
	assert.Equal(t, Normalize(frenchDeck), readTranslation(t, store, "gamma"))
}

func TestIngestor_EmptyDecksDirectory(t *testing.T) {
	store := newIngestStore(t)
	ingestor, err := NewIngestor(Config{Store: store, Extractor: &stubExtractor{}})
	require.NoError(t, err)

	stats, err := ingestor.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.IngestStats{}, stats)
}

func TestIngestor_CancelledContext(t *testing.T) {
	store := newIngestStore(t, "alpha.pdf")
	ingestor, err := NewIngestor(Config{
		Store:     store,
		Extractor: &stubExtractor{texts: map[string]string{"alpha.pdf": englishDeck}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ingestor.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIngestor_Validation(t *testing.T) {
	store := newIngestStore(t)

	_, err := NewIngestor(Config{Extractor: &stubExtractor{}})
	assert.ErrorContains(t, err, "store")

	_, err = NewIngestor(Config{Store: store})
	assert.ErrorContains(t, err, "extractor")
}
