package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second deck"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first deck"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	docs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Sorted by name, ids mapped back to the source deck extension.
	assert.Equal(t, "a.pdf", docs[0].ID)
	assert.Equal(t, "first deck", docs[0].Text)
	assert.Equal(t, "b.pdf", docs[1].ID)
	assert.Equal(t, "second deck", docs[1].Text)
}

func TestLoad_DropsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	raw := append([]byte("energy "), 0xff, 0xfe)
	raw = append(raw, []byte(" transition")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deck.txt"), raw, 0o644))

	docs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "energy  transition", docs[0].Text)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoad_EmptyDir(t *testing.T) {
	docs, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
