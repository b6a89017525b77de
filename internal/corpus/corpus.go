// Package corpus loads the translated deck texts that feed the vectorizer.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deckscore/deckscore/internal/common"
)

// Document is one translated deck: its id and its full text.
type Document struct {
	ID   string
	Text string
}

// Load reads every .txt file in dir, sorted by file name. The document id is
// the source deck name, so the .txt suffix goes back to .pdf. Bytes that are
// not valid UTF-8 are dropped rather than failing the batch.
func Load(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: translated corpus %s (run ingest first)", common.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to list corpus %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		data, readErr := os.ReadFile(filepath.Join(dir, name))
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, readErr)
		}
		docs = append(docs, Document{
			ID:   strings.TrimSuffix(name, ".txt") + ".pdf",
			Text: strings.ToValidUTF8(string(data), ""),
		})
	}

	return docs, nil
}
