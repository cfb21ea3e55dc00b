package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/protoshare/protoshare/cmd/protoshare/models"
	"github.com/protoshare/protoshare/cmd/protoshare/repository"
	"github.com/protoshare/protoshare/common/logger"
	"github.com/protoshare/protoshare/common/storage"
)

// Client input errors for the sites endpoints
var (
	ErrInvalidSlug  = errors.New("invalid slug")
	ErrSiteNotFound = errors.New("site not found")
)

// SiteService lists and deletes published sites, reconciling the history
// store against the live directory set on every listing
type SiteService struct {
	paths   *storage.Paths
	history *repository.HistoryStore
	log     *logger.Logger
}

// NewSiteService creates a new site service
func NewSiteService(paths *storage.Paths, history *repository.HistoryStore, log *logger.Logger) *SiteService {
	return &SiteService{
		paths:   paths,
		history: history,
		log:     log,
	}
}

// List returns all live sites, newest first. The filesystem decides which
// sites exist; sidecar metadata and history fill in the rest. Stale history
// entries are pruned and missing or outdated ones are backfilled as a side
// effect, so the store self-heals from divergence.
func (s *SiteService) List(ctx context.Context) ([]models.Site, error) {
	slugs, err := repository.ListSiteDirs(s.paths.SitesDir)
	if err != nil {
		return nil, err
	}

	valid := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		valid[slug] = struct{}{}
	}
	if err := s.history.Reconcile(valid); err != nil {
		s.log.Warn("failed to prune history entries", "error", err)
	}

	index := s.history.Index()

	sites := make([]models.Site, 0, len(slugs))
	for _, slug := range slugs {
		siteDir := s.paths.SiteDir(slug)

		meta, err := repository.ReadSiteMeta(siteDir)
		if err != nil {
			// corrupt sidecar is treated as absent
			s.log.Warn("failed to read site meta", "slug", slug, "error", err)
		}

		historyEntry, inHistory := index[slug]
		record := s.mergeRecord(slug, siteDir, meta, historyEntry, inHistory)

		if !inHistory || historyDiffers(record, historyEntry) {
			if err := s.history.Upsert(record); err != nil {
				s.log.Warn("failed to backfill history entry", "slug", slug, "error", err)
			}
		}

		sites = append(sites, record)
	}

	sort.SliceStable(sites, func(i, j int) bool {
		a, b := sites[i].UploadedAt, sites[j].UploadedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return sites, nil
}

// Delete removes the site directory tree and its history entry
func (s *SiteService) Delete(ctx context.Context, slug string) error {
	if !repository.ValidSlug(slug) {
		return ErrInvalidSlug
	}

	siteDir := s.paths.SiteDir(slug)
	if _, err := os.Stat(siteDir); err != nil {
		if os.IsNotExist(err) {
			return ErrSiteNotFound
		}
		return fmt.Errorf("failed to stat site dir: %w", err)
	}

	if err := os.RemoveAll(siteDir); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if err := s.history.Remove(slug); err != nil {
		// the directory is gone; the next listing reconciliation prunes it
		s.log.Warn("failed to remove history entry", "slug", slug, "error", err)
	}

	s.log.InfoContext(ctx, "site deleted", "slug", slug)
	return nil
}

// mergeRecord re-derives a site record from sidecar metadata, the history
// entry, and on-disk reality, in that order of preference
func (s *SiteService) mergeRecord(slug, siteDir string, meta *models.Site, historyEntry models.Site, inHistory bool) models.Site {
	if meta == nil {
		meta = &models.Site{}
	}
	if !inHistory {
		historyEntry = models.Site{}
	}

	record := models.Site{
		Slug:         slug,
		URL:          firstNonEmpty(meta.URL, historyEntry.URL, models.SiteURL(slug)),
		OriginalName: firstNonEmpty(meta.OriginalName, historyEntry.OriginalName, slug),
		FileType:     models.FileTypeUnknown,
		EntryFile:    firstNonEmpty(meta.EntryFile, meta.PrimaryHTML, historyEntry.EntryFile, historyEntry.PrimaryHTML, "index.html"),
		PrimaryHTML:  firstNonEmpty(meta.PrimaryHTML, historyEntry.PrimaryHTML),
	}

	if meta.FileType != "" {
		record.FileType = meta.FileType
	} else if historyEntry.FileType != "" {
		record.FileType = historyEntry.FileType
	}

	switch {
	case meta.UploadedAt != nil:
		record.UploadedAt = meta.UploadedAt
	case historyEntry.UploadedAt != nil:
		record.UploadedAt = historyEntry.UploadedAt
	default:
		// last resort: directory mtime approximates the upload time
		if info, err := os.Stat(siteDir); err == nil {
			mtime := info.ModTime().UTC()
			record.UploadedAt = &mtime
		} else {
			now := time.Now().UTC()
			record.UploadedAt = &now
		}
	}

	if meta.Size != nil {
		record.Size = meta.Size
	} else {
		record.Size = historyEntry.Size
	}

	return record
}

// historyDiffers reports whether the merged record carries anything the
// stored history entry does not
func historyDiffers(record, historyEntry models.Site) bool {
	return historyEntry.OriginalName != record.OriginalName ||
		historyEntry.FileType != record.FileType ||
		historyEntry.EntryFile != record.EntryFile ||
		historyEntry.PrimaryHTML != record.PrimaryHTML ||
		historyEntry.URL != record.URL ||
		!timesEqual(historyEntry.UploadedAt, record.UploadedAt) ||
		!sizesEqual(historyEntry.Size, record.Size)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sizesEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
