package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/protoshare/protoshare/cmd/protoshare/models"
	"github.com/protoshare/protoshare/common/logger"
)

// historyVersion is the schema version of the persisted history file
const historyVersion = 1

// historyFile is the persisted representation of the store
type historyFile struct {
	Version int           `json:"version"`
	Items   []models.Site `json:"items"`
}

// HistoryStore is the durable registry of all known sites' metadata,
// independent of the live site directory listing. It loads lazily on first
// access, mutates in place, and persists on every mutation. All mutations
// are serialized through a single mutex so concurrent requests cannot lose
// updates to the shared snapshot.
type HistoryStore struct {
	path string
	log  *logger.Logger

	mu     sync.Mutex
	loaded bool
	items  []models.Site
}

// NewHistoryStore creates a store backed by the given file path
func NewHistoryStore(path string, log *logger.Logger) *HistoryStore {
	return &HistoryStore{
		path: path,
		log:  log,
	}
}

// Upsert inserts or merge-updates a record by slug. On merge, fields of the
// new record win, except that a missing uploadedAt or size never clobbers a
// previously known good value.
func (h *HistoryStore) Upsert(site models.Site) error {
	if !site.Normalize() {
		return nil // records without a slug are not storable
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	if idx := h.indexOf(site.Slug); idx >= 0 {
		existing := h.items[idx]
		if site.UploadedAt == nil {
			site.UploadedAt = existing.UploadedAt
		}
		if site.Size == nil {
			site.Size = existing.Size
		}
		h.items[idx] = site
	} else {
		h.items = append(h.items, site)
	}

	return h.persist()
}

// Remove deletes the entry for the slug if present; no-op otherwise
func (h *HistoryStore) Remove(slug string) error {
	if slug == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	idx := h.indexOf(slug)
	if idx < 0 {
		return nil
	}
	h.items = append(h.items[:idx], h.items[idx+1:]...)

	return h.persist()
}

// Reconcile drops every entry whose slug is not in the given set, leaving
// the others untouched. Used by the listing endpoint to keep history from
// accumulating entries for directories deleted outside the delete endpoint.
func (h *HistoryStore) Reconcile(validSlugs map[string]struct{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	kept := h.items[:0]
	for _, item := range h.items {
		if _, ok := validSlugs[item.Slug]; ok {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(h.items) {
		return nil
	}
	h.items = kept

	return h.persist()
}

// Get returns the entry for a slug, if known
func (h *HistoryStore) Get(slug string) (models.Site, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	if idx := h.indexOf(slug); idx >= 0 {
		return h.items[idx], true
	}
	return models.Site{}, false
}

// Index returns a snapshot of the store keyed by slug
func (h *HistoryStore) Index() map[string]models.Site {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.load()

	index := make(map[string]models.Site, len(h.items))
	for _, item := range h.items {
		index[item.Slug] = item
	}
	return index
}

// indexOf returns the position of a slug, or -1. Caller must hold mu.
func (h *HistoryStore) indexOf(slug string) int {
	for i, item := range h.items {
		if item.Slug == slug {
			return i
		}
	}
	return -1
}

// load reads the persisted file on first access. A missing, empty, or
// malformed file is never fatal: the store starts from an empty collection.
// Caller must hold mu.
func (h *HistoryStore) load() {
	if h.loaded {
		return
	}
	h.loaded = true
	h.items = nil

	raw, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			h.log.Warn("failed to read history file, starting empty", "path", h.path, "error", err)
		}
		return
	}

	var parsed historyFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		h.log.Warn("failed to parse history file, will recreate", "path", h.path, "error", err)
		return
	}

	for _, item := range parsed.Items {
		if item.Normalize() {
			h.items = append(h.items, item)
		}
	}
}

// persist writes the full collection back, sorted by uploadedAt descending
// (entries with no timestamp sort last). Caller must hold mu.
func (h *HistoryStore) persist() error {
	items := make([]models.Site, len(h.items))
	copy(items, h.items)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].UploadedAt, items[j].UploadedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	payload, err := json.MarshalIndent(historyFile{Version: historyVersion, Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	if err := os.WriteFile(h.path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}

	return nil
}
