package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/cmd/protoshare/service"
	"github.com/protoshare/protoshare/common/bootstrap"
)

// SiteHandler handles site listing and deletion
type SiteHandler struct {
	components *bootstrap.Components
	siteSvc    *service.SiteService
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(components *bootstrap.Components, siteSvc *service.SiteService) *SiteHandler {
	return &SiteHandler{
		components: components,
		siteSvc:    siteSvc,
	}
}

// ListSites returns all live sites, reconciled against history, newest first
// GET /api/sites
func (h *SiteHandler) ListSites(c echo.Context) error {
	sites, err := h.siteSvc.List(c.Request().Context())
	if err != nil {
		h.components.Logger.Error("failed to list sites", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to list sites")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": sites,
	})
}

// DeleteSite removes a site directory and its history entry
// DELETE /api/sites/:slug
func (h *SiteHandler) DeleteSite(c echo.Context) error {
	slug := c.Param("slug")

	if err := h.siteSvc.Delete(c.Request().Context(), slug); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid slug")
		case errors.Is(err, service.ErrSiteNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "site not found")
		default:
			h.components.Logger.Error("failed to delete site", "slug", slug, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete site")
		}
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Health is the liveness probe
// GET /api/health
func (h *SiteHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
