package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/protoshare/protoshare/cmd/protoshare/container"
	"github.com/protoshare/protoshare/cmd/protoshare/routes"
	"github.com/protoshare/protoshare/common/bootstrap"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	// Optional .env for local development; real deployments use the environment
	_ = godotenv.Load()

	// Bootstrap common components (config, logger, storage layout, migration)
	components, err := bootstrap.Setup(ctx, "protoshare")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap protoshare: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, components)

	// Register all routes and static mounts
	registerRoutes(e, serviceContainer)
	setupStatic(e, components)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(components.Config.BodyLimit()))

	if components.Config.RateLimit.Enabled {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(components.Config.RateLimit.RPS),
				Burst: components.Config.RateLimit.Burst,
			}),
		}))
	}
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	api := e.Group("/api")
	routes.RegisterUploadRoutes(api, serviceContainer)
	routes.RegisterSiteRoutes(api, serviceContainer)
	routes.RegisterHostInfoRoutes(api, serviceContainer)
}

// setupStatic mounts each site directory's contents under /sites and the
// optional frontend dir at the root
func setupStatic(e *echo.Echo, components *bootstrap.Components) {
	e.Static("/sites", components.Storage.SitesDir)

	publicDir := components.Config.Storage.PublicDir
	if publicDir != "" {
		if info, err := os.Stat(publicDir); err == nil && info.IsDir() {
			e.Static("/", publicDir)
		}
	}
}

// startServer starts the Echo server on the configured port
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("Starting protoshare",
		"port", port,
		"data_dir", components.Storage.DataDir,
	)

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
