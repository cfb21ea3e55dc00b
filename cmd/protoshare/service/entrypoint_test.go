package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEntryPoint_CandidateGetsRedirect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "start.html"), "<html>start</html>")

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "start.html", res.EntryFile)
	assert.Equal(t, "start.html", res.PrimaryHTML)

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `url=./start.html`)
	assert.Contains(t, string(index), `location.replace('./start.html')`)
}

func TestResolveEntryPoint_CandidatePriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "start_with_pages.html"), "<html></html>")
	writeFile(t, filepath.Join(dir, "start.html"), "<html></html>")

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "start.html", res.PrimaryHTML)
}

func TestResolveEntryPoint_ExistingIndexAcceptedAsIs(t *testing.T) {
	dir := t.TempDir()
	const content = "<html>original index</html>"
	writeFile(t, filepath.Join(dir, "index.html"), content)

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "index.html", res.EntryFile)
	assert.Equal(t, "index.html", res.PrimaryHTML)

	// accepted as-is, never rewritten
	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, content, string(index))
}

func TestResolveEntryPoint_CandidateBeatsExistingIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<html>old</html>")
	writeFile(t, filepath.Join(dir, "start_c_1.html"), "<html></html>")

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "start_c_1.html", res.EntryFile)

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "start_c_1.html")
}

func TestResolveEntryPoint_ListingFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pageA.html"), "<html></html>")
	writeFile(t, filepath.Join(dir, "pageB.htm"), "<html></html>")
	writeFile(t, filepath.Join(dir, "styles.css"), "body{}")

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "index.html", res.EntryFile)
	assert.Empty(t, res.PrimaryHTML, "listing fallback carries no primary designation")

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `href="./pageA.html"`)
	assert.Contains(t, string(index), `href="./pageB.htm"`)
	assert.NotContains(t, string(index), "styles.css")
}

func TestResolveEntryPoint_ListingPlaceholderWhenNoHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "1;")

	res, err := ResolveEntryPoint(dir)
	require.NoError(t, err)

	assert.Equal(t, "index.html", res.EntryFile)
	assert.Empty(t, res.PrimaryHTML)

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "no HTML files found")
}

func TestEnsureIndex(t *testing.T) {
	t.Run("synthesizes listing when index missing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "page.html"), "<html></html>")

		require.NoError(t, EnsureIndex(dir))
		assert.FileExists(t, filepath.Join(dir, "index.html"))
	})

	t.Run("leaves existing index untouched", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "index.html"), "keep me")

		require.NoError(t, EnsureIndex(dir))

		index, err := os.ReadFile(filepath.Join(dir, "index.html"))
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(index))
	})
}
