package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/protoshare/protoshare/cmd/protoshare/models"
	"github.com/protoshare/protoshare/cmd/protoshare/repository"
	"github.com/protoshare/protoshare/common/logger"
	"github.com/protoshare/protoshare/common/storage"
)

// Client input errors, mapped to 4xx responses by the handler layer
var (
	ErrNoFiles         = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("unsupported file type, upload .html, .zip or a complete folder")
)

// UploadRequest carries one upload's inputs: the received files, the
// optional explicit type hint, and the optional per-file relative-path
// manifest (positionally matching the files)
type UploadRequest struct {
	Files      []models.UploadedFile
	UploadType string
	Manifest   []string
}

// UploadService classifies incoming uploads and builds site directories
// from them
type UploadService struct {
	paths      *storage.Paths
	history    *repository.HistoryStore
	slugLength int
	log        *logger.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(paths *storage.Paths, history *repository.HistoryStore, slugLength int, log *logger.Logger) *UploadService {
	return &UploadService{
		paths:      paths,
		history:    history,
		slugLength: slugLength,
		log:        log,
	}
}

// Upload runs one upload to completion: classify, materialize the site
// directory, resolve the entry point, and persist metadata (sidecar first,
// then history). On failure after the site directory was created, the
// partial directory is removed. Temporary files are owned by the caller.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*models.Site, error) {
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}

	treatAsFolder := strings.EqualFold(req.UploadType, "folder") ||
		len(req.Files) > 1 ||
		hasNestedNames(req.Files)

	first := req.Files[0]

	// Validate single-file extensions before creating anything on disk,
	// so a rejected upload leaves no empty site directory behind.
	if !treatAsFolder && !IsHTMLFile(first.OriginalName) && !IsZipFile(first.OriginalName) {
		return nil, ErrUnsupportedType
	}

	slug, err := NewSlug(s.slugLength)
	if err != nil {
		return nil, err
	}
	log := s.log.WithSlug(slug)

	siteDir := s.paths.SiteDir(slug)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create site dir: %w", err)
	}

	site, err := s.build(ctx, log, slug, siteDir, treatAsFolder, req)
	if err != nil {
		if rmErr := os.RemoveAll(siteDir); rmErr != nil {
			log.Warn("failed to remove partial site dir", "error", rmErr)
		}
		return nil, err
	}

	if err := repository.WriteSiteMeta(siteDir, *site); err != nil {
		if rmErr := os.RemoveAll(siteDir); rmErr != nil {
			log.Warn("failed to remove partial site dir", "error", rmErr)
		}
		return nil, err
	}
	if err := s.history.Upsert(*site); err != nil {
		// the site itself is live; listing reconciliation will backfill
		log.Warn("failed to upsert history entry", "error", err)
	}

	log.InfoContext(ctx, "site created",
		"file_type", site.FileType,
		"entry_file", site.EntryFile,
		"size", valueOrZero(site.Size),
	)

	return site, nil
}

// build materializes the site directory and returns the finished record
func (s *UploadService) build(ctx context.Context, log *logger.Logger, slug, siteDir string, treatAsFolder bool, req UploadRequest) (*models.Site, error) {
	uploadedAt := time.Now().UTC()
	totalSize := int64(0)
	for _, f := range req.Files {
		totalSize += f.Size
	}

	site := &models.Site{
		Slug:         slug,
		URL:          models.SiteURL(slug),
		OriginalName: path.Base(filepath.ToSlash(req.Files[0].OriginalName)),
		FileType:     models.FileTypeUnknown,
		EntryFile:    "index.html",
		UploadedAt:   &uploadedAt,
		Size:         &totalSize,
	}
	if site.OriginalName == "." || site.OriginalName == "/" {
		site.OriginalName = slug
	}

	if treatAsFolder {
		if err := s.buildFolder(log, siteDir, req, site); err != nil {
			return nil, err
		}
	} else if err := s.buildSingleFile(siteDir, req.Files[0], site); err != nil {
		return nil, err
	}

	// Post-build invariant: the site root must contain index.html,
	// whatever path produced the tree
	if err := EnsureIndex(siteDir); err != nil {
		return nil, err
	}

	return site, nil
}

// buildSingleFile handles the html and zip upload modes
func (s *UploadService) buildSingleFile(siteDir string, file models.UploadedFile, site *models.Site) error {
	site.StoredName = file.StoredName

	if IsHTMLFile(file.OriginalName) {
		// the uploaded document is already the entry, verbatim
		if err := copyFile(file.TempPath, filepath.Join(siteDir, "index.html")); err != nil {
			return fmt.Errorf("failed to copy html upload: %w", err)
		}
		site.FileType = models.FileTypeHTML
		site.EntryFile = "index.html"
		site.PrimaryHTML = "index.html"
		return nil
	}

	if err := extractZip(file.TempPath, siteDir); err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	if err := NormalizeSiteDir(siteDir); err != nil {
		return err
	}
	resolution, err := ResolveEntryPoint(siteDir)
	if err != nil {
		return err
	}

	site.FileType = models.FileTypeZip
	site.EntryFile = resolution.EntryFile
	site.PrimaryHTML = resolution.PrimaryHTML
	return nil
}

// buildFolder reconstructs a directory tree from a flattened folder
// selection, using the manifest entry for each file when present and the
// original name otherwise
func (s *UploadService) buildFolder(log *logger.Logger, siteDir string, req UploadRequest, site *models.Site) error {
	site.FileType = models.FileTypeFolder

	rootName := ""
	placed := 0
	for i, file := range req.Files {
		reference := file.OriginalName
		if i < len(req.Manifest) && req.Manifest[i] != "" {
			reference = req.Manifest[i]
		}

		clean := SanitizeRelativePath(reference)
		if clean == "" {
			log.Warn("skipping upload entry with empty sanitized path", "reference", reference)
			continue
		}
		if rootName == "" {
			rootName = strings.SplitN(clean, "/", 2)[0]
		}

		destPath := filepath.Join(siteDir, filepath.FromSlash(clean))
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			log.Warn("failed to create directory for upload entry", "path", clean, "error", err)
			continue
		}
		if err := copyFile(file.TempPath, destPath); err != nil {
			// best-effort: most files placed is more useful than none
			log.Warn("failed to place upload entry", "path", clean, "error", err)
			continue
		}
		placed++
	}
	log.Info("folder upload reconstructed", "files", len(req.Files), "placed", placed)

	if err := NormalizeSiteDir(siteDir); err != nil {
		return err
	}
	resolution, err := ResolveEntryPoint(siteDir)
	if err != nil {
		return err
	}
	site.EntryFile = resolution.EntryFile
	site.PrimaryHTML = resolution.PrimaryHTML

	// Browser folder selections carry a meaningless default name, so the
	// collection's common leading segment labels the site instead
	if rootName != "" {
		site.OriginalName = rootName
	} else if idx := strings.IndexByte(site.OriginalName, '/'); idx > 0 {
		site.OriginalName = site.OriginalName[:idx]
	}

	return nil
}

// hasNestedNames reports whether any original filename embeds a path
// separator, indicating a flattened folder selection
func hasNestedNames(files []models.UploadedFile) bool {
	for _, f := range files {
		if strings.ContainsAny(f.OriginalName, `/\`) {
			return true
		}
	}
	return false
}

// extractZip extracts every archive entry under destDir, preserving
// internal relative paths. Entry names are sanitized so no entry can
// resolve outside the destination root.
func extractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		clean := SanitizeRelativePath(entry.Name)
		if clean == "" {
			continue
		}
		destPath := filepath.Join(destDir, filepath.FromSlash(clean))

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("failed to create archive dir %s: %w", clean, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("failed to create archive dir for %s: %w", clean, err)
		}
		if err := extractZipEntry(entry, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", clean, err)
		}
	}

	return nil
}

func extractZipEntry(entry *zip.File, destPath string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

// copyFile copies a regular file's bytes
func copyFile(fromPath, toPath string) error {
	src, err := os.Open(fromPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(toPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
