package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListDecks returns the file paths of every source deck dropped into the
// decks directory, sorted by name. A missing directory is an empty batch,
// not an error.
func (s *FileStore) ListDecks(_ context.Context) ([]string, error) {
	dir := s.layout.DecksDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list decks in %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// HasTranslation reports whether a deck's translated text is already cached.
func (s *FileStore) HasTranslation(stem string) bool {
	_, err := os.Stat(s.translationPath(stem))
	return err == nil
}

// SaveTranslation caches the translated, normalized text for one deck.
func (s *FileStore) SaveTranslation(_ context.Context, stem, text string) error {
	return writeFileAtomic(s.translationPath(stem), []byte(text))
}

func (s *FileStore) translationPath(stem string) string {
	return filepath.Join(s.layout.TranslatedDir(), stem+".txt")
}
