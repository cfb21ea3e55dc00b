package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/cmd/protoshare/models"
	"github.com/protoshare/protoshare/cmd/protoshare/service"
	"github.com/protoshare/protoshare/common/bootstrap"
)

// UploadHandler handles prototype upload requests
type UploadHandler struct {
	components *bootstrap.Components
	uploadSvc  *service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(components *bootstrap.Components, uploadSvc *service.UploadService) *UploadHandler {
	return &UploadHandler{
		components: components,
		uploadSvc:  uploadSvc,
	}
}

// Upload accepts one or more uploaded files plus the optional uploadType
// and manifest form fields, and publishes a new site from them
// POST /api/upload
func (h *UploadHandler) Upload(c echo.Context) error {
	log := h.components.Logger

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}

	files, err := h.stageFiles(collectFileHeaders(form))
	// Temporary files are removed whatever the outcome
	defer h.cleanupTempFiles(files)
	if err != nil {
		log.Error("failed to stage uploaded files", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}

	req := service.UploadRequest{
		Files:      files,
		UploadType: strings.ToLower(c.FormValue("uploadType")),
		Manifest:   h.parseManifest(c.FormValue("manifest")),
	}

	site, err := h.uploadSvc.Upload(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNoFiles) || errors.Is(err, service.ErrUnsupportedType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		log.Error("upload failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"slug": site.Slug,
		"url":  site.URL,
	})
}

// stageFiles copies every multipart part into the uploads dir and returns
// the per-file manifest entries. Files staged before a failure are still
// returned so the caller can clean them up.
func (h *UploadHandler) stageFiles(headers []*multipart.FileHeader) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	for _, header := range headers {
		storedName := uuid.NewString() + "-" + filepath.Base(filepath.FromSlash(header.Filename))
		tempPath := filepath.Join(h.components.Storage.UploadsDir, storedName)

		if err := saveMultipartFile(header, tempPath); err != nil {
			return files, err
		}

		files = append(files, models.UploadedFile{
			OriginalName: header.Filename,
			StoredName:   storedName,
			TempPath:     tempPath,
			Size:         header.Size,
		})
	}
	return files, nil
}

// parseManifest decodes the JSON-encoded relative-path list; a malformed
// manifest is ignored rather than failing the upload
func (h *UploadHandler) parseManifest(raw string) []string {
	if raw == "" {
		return nil
	}
	var manifest []string
	if err := json.Unmarshal([]byte(raw), &manifest); err != nil {
		h.components.Logger.Warn("failed to parse manifest", "error", err)
		return nil
	}
	return manifest
}

func (h *UploadHandler) cleanupTempFiles(files []models.UploadedFile) {
	for _, f := range files {
		if err := os.Remove(f.TempPath); err != nil && !os.IsNotExist(err) {
			h.components.Logger.Warn("failed to remove temp file", "path", f.TempPath, "error", err)
		}
	}
}

// collectFileHeaders flattens the multipart file map. The conventional
// field name is "files"; when clients use per-file field names, fields are
// visited in sorted order so the manifest's positional matching stays
// deterministic.
func collectFileHeaders(form *multipart.Form) []*multipart.FileHeader {
	if headers, ok := form.File["files"]; ok && len(headers) > 0 {
		return headers
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var headers []*multipart.FileHeader
	for _, field := range fields {
		headers = append(headers, form.File[field]...)
	}
	return headers
}

func saveMultipartFile(header *multipart.FileHeader, destPath string) error {
	src, err := header.Open()
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
