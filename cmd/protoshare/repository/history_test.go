package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protoshare/protoshare/cmd/protoshare/models"
	"github.com/protoshare/protoshare/common/logger"
)

func newTestStore(t *testing.T) (*HistoryStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	return NewHistoryStore(path, logger.New("error", "text")), path
}

func timePtr(t time.Time) *time.Time { return &t }
func sizePtr(n int64) *int64         { return &n }

func TestHistoryStore_UpsertInsertsAndUpdates(t *testing.T) {
	store, _ := newTestStore(t)

	uploaded := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(models.Site{
		Slug:         "abc123",
		OriginalName: "design.zip",
		FileType:     models.FileTypeZip,
		EntryFile:    "start.html",
		PrimaryHTML:  "start.html",
		UploadedAt:   timePtr(uploaded),
		Size:         sizePtr(1024),
	}))

	entry, ok := store.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, "design.zip", entry.OriginalName)
	assert.Equal(t, models.SiteURL("abc123"), entry.URL)

	// fields present in the new record win
	require.NoError(t, store.Upsert(models.Site{
		Slug:         "abc123",
		OriginalName: "design-v2.zip",
		FileType:     models.FileTypeZip,
		EntryFile:    "start.html",
		UploadedAt:   timePtr(uploaded.Add(time.Hour)),
		Size:         sizePtr(2048),
	}))

	entry, ok = store.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, "design-v2.zip", entry.OriginalName)
	assert.Equal(t, sizePtr(2048), entry.Size)
}

func TestHistoryStore_UpsertPreservesKnownGoodValues(t *testing.T) {
	store, _ := newTestStore(t)

	uploaded := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(models.Site{
		Slug:       "abc123",
		FileType:   models.FileTypeHTML,
		UploadedAt: timePtr(uploaded),
		Size:       sizePtr(512),
	}))

	// a merge with no uploadedAt and no size must not clobber either
	require.NoError(t, store.Upsert(models.Site{
		Slug:     "abc123",
		FileType: models.FileTypeHTML,
	}))

	entry, ok := store.Get("abc123")
	require.True(t, ok)
	require.NotNil(t, entry.UploadedAt)
	assert.True(t, entry.UploadedAt.Equal(uploaded))
	require.NotNil(t, entry.Size)
	assert.Equal(t, int64(512), *entry.Size)
}

func TestHistoryStore_UpsertIgnoresRecordsWithoutSlug(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.Upsert(models.Site{OriginalName: "nameless"}))

	assert.Empty(t, store.Index())
	assert.NoFileExists(t, path)
}

func TestHistoryStore_Remove(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(models.Site{Slug: "keep"}))
	require.NoError(t, store.Upsert(models.Site{Slug: "drop"}))

	require.NoError(t, store.Remove("drop"))
	_, ok := store.Get("drop")
	assert.False(t, ok)
	_, ok = store.Get("keep")
	assert.True(t, ok)

	// removing an unknown slug is a no-op
	require.NoError(t, store.Remove("drop"))
	require.NoError(t, store.Remove(""))
}

func TestHistoryStore_Reconcile(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(models.Site{Slug: "live1"}))
	require.NoError(t, store.Upsert(models.Site{Slug: "live2"}))
	require.NoError(t, store.Upsert(models.Site{Slug: "stale"}))

	require.NoError(t, store.Reconcile(map[string]struct{}{
		"live1": {},
		"live2": {},
	}))

	index := store.Index()
	assert.Len(t, index, 2)
	assert.Contains(t, index, "live1")
	assert.Contains(t, index, "live2")
	assert.NotContains(t, index, "stale")
}

func TestHistoryStore_LoadToleratesMissingAndMalformedFiles(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.Empty(t, store.Index())
	})

	t.Run("malformed file", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		assert.Empty(t, store.Index())

		// the next mutation recreates a valid file
		require.NoError(t, store.Upsert(models.Site{Slug: "fresh"}))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var parsed historyFile
		require.NoError(t, json.Unmarshal(raw, &parsed))
		assert.Len(t, parsed.Items, 1)
	})

	t.Run("empty file", func(t *testing.T) {
		store, path := newTestStore(t)
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		assert.Empty(t, store.Index())
	})
}

func TestHistoryStore_NormalizesEntriesOnLoad(t *testing.T) {
	store, path := newTestStore(t)

	raw := `{"version":1,"items":[
		{"slug":"good","primaryHtml":"start.html"},
		{"originalName":"no-slug"},
		{"slug":"bare"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	index := store.Index()
	require.Len(t, index, 2)

	good := index["good"]
	assert.Equal(t, "start.html", good.EntryFile, "entryFile derives from primaryHtml")
	assert.Equal(t, models.FileTypeUnknown, good.FileType)

	bare := index["bare"]
	assert.Equal(t, "index.html", bare.EntryFile)
	assert.Equal(t, "bare", bare.OriginalName)
	assert.Equal(t, models.SiteURL("bare"), bare.URL)
}

func TestHistoryStore_PersistsSortedByUploadedAtDescending(t *testing.T) {
	store, path := newTestStore(t)

	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(models.Site{Slug: "oldest", UploadedAt: timePtr(base)}))
	require.NoError(t, store.Upsert(models.Site{Slug: "undated"}))
	require.NoError(t, store.Upsert(models.Site{Slug: "newest", UploadedAt: timePtr(base.Add(48 * time.Hour))}))
	require.NoError(t, store.Upsert(models.Site{Slug: "middle", UploadedAt: timePtr(base.Add(24 * time.Hour))}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed historyFile
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, 1, parsed.Version)

	slugs := make([]string, len(parsed.Items))
	for i, item := range parsed.Items {
		slugs[i] = item.Slug
	}
	assert.Equal(t, []string{"newest", "middle", "oldest", "undated"}, slugs)
}
