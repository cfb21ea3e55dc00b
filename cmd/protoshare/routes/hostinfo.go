package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/cmd/protoshare/container"
	"github.com/protoshare/protoshare/cmd/protoshare/handlers"
)

// RegisterHostInfoRoutes registers the informational host-info route
func RegisterHostInfoRoutes(g *echo.Group, c *container.Container) {
	handler := handlers.NewHostInfoHandler(c.Components)

	// GET /api/host-info - Hostname, port and LAN URLs for display
	g.GET("/host-info", handler.HostInfo)
}
