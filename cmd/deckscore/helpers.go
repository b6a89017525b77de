package main

import (
	"path/filepath"
	"strings"

	"github.com/deckscore/deckscore/internal/config"
	"github.com/deckscore/deckscore/internal/storage"
)

// openStore builds the file store from the configured directory layout.
func openStore() (*storage.FileStore, error) {
	layout, err := config.LoadLayout()
	if err != nil {
		return nil, err
	}
	return storage.New(layout), nil
}

// docID converts a deck file path into the document id used by every table.
// Ids always carry the .pdf suffix regardless of the source extension.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}
