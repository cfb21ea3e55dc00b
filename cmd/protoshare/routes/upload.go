package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/cmd/protoshare/container"
	"github.com/protoshare/protoshare/cmd/protoshare/handlers"
)

// RegisterUploadRoutes registers upload-related routes
func RegisterUploadRoutes(g *echo.Group, c *container.Container) {
	handler := handlers.NewUploadHandler(c.Components, c.UploadService)

	// POST /api/upload - Publish a new site from uploaded files
	g.POST("/upload", handler.Upload)
}
