package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/cmd/protoshare/container"
	"github.com/protoshare/protoshare/cmd/protoshare/handlers"
)

// RegisterSiteRoutes registers site listing, deletion and health routes
func RegisterSiteRoutes(g *echo.Group, c *container.Container) {
	handler := handlers.NewSiteHandler(c.Components, c.SiteService)

	// GET /api/sites - List all live sites, newest first
	g.GET("/sites", handler.ListSites)

	// DELETE /api/sites/:slug - Remove a site and its history entry
	g.DELETE("/sites/:slug", handler.DeleteSite)

	// GET /api/health - Liveness probe
	g.GET("/health", handler.Health)
}
