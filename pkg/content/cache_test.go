package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T) (papersPath, textDir string) {
	t.Helper()
	dir := t.TempDir()

	papersPath = filepath.Join(dir, "papers.json")
	catalog := `[
		{"id": "smith2023-attention", "title": "Attention Revisited", "authors": ["J. Smith"], "year": 2023},
		{"id": "doe2021-graphs", "title": "Sparse Graph Learning", "authors": ["A. Doe"], "year": 2021}
	]`
	require.NoError(t, os.WriteFile(papersPath, []byte(catalog), 0644))

	textDir = filepath.Join(dir, "paper_texts")
	require.NoError(t, os.MkdirAll(textDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(textDir, "smith2023-attention.txt"),
		[]byte("Full text of the attention paper."), 0644))

	return papersPath, textDir
}

func TestNewCacheDerivesChatAvailability(t *testing.T) {
	papersPath, textDir := writeCatalog(t)

	c, err := NewCache(papersPath, textDir)
	require.NoError(t, err)

	withText, ok := c.GetPaper("smith2023-attention")
	require.True(t, ok)
	assert.True(t, withText.ChatAvailable)

	withoutText, ok := c.GetPaper("doe2021-graphs")
	require.True(t, ok)
	assert.False(t, withoutText.ChatAvailable)

	_, ok = c.GetPaper("unknown")
	assert.False(t, ok)
}

func TestPapersPreservesCatalogOrder(t *testing.T) {
	papersPath, textDir := writeCatalog(t)

	c, err := NewCache(papersPath, textDir)
	require.NoError(t, err)

	papers := c.Papers()
	require.Len(t, papers, 2)
	assert.Equal(t, "smith2023-attention", papers[0].ID)
	assert.Equal(t, "doe2021-graphs", papers[1].ID)
}

func TestLoadFullText(t *testing.T) {
	papersPath, textDir := writeCatalog(t)

	c, err := NewCache(papersPath, textDir)
	require.NoError(t, err)

	text, ok := c.LoadFullText("smith2023-attention")
	require.True(t, ok)
	assert.Equal(t, "Full text of the attention paper.", text)

	// Second read comes from the memo; deleting the file must not matter.
	require.NoError(t, os.Remove(filepath.Join(textDir, "smith2023-attention.txt")))
	text, ok = c.LoadFullText("smith2023-attention")
	require.True(t, ok)
	assert.Equal(t, "Full text of the attention paper.", text)

	_, ok = c.LoadFullText("doe2021-graphs")
	assert.False(t, ok)
}

func TestNewCacheMissingCatalog(t *testing.T) {
	_, err := NewCache(filepath.Join(t.TempDir(), "absent.json"), t.TempDir())
	assert.Error(t, err)
}
