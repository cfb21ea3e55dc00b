package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/protoshare/protoshare/common/config"
	"github.com/protoshare/protoshare/common/logger"
	"github.com/protoshare/protoshare/common/storage"
)

// Setup initializes all service components
// This is the main entry point for the service
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize storage layout under the data root
	components.Storage, err = storage.New(components.Config.Storage.DataDir, components.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	components.Logger.Info("storage initialized", "data_dir", components.Storage.DataDir)

	// 4. One-time legacy layout migration, before any request is served
	if !options.skipMigration {
		if wd, err := os.Getwd(); err == nil {
			components.Storage.MigrateLegacyLayout(wd)
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"data_dir", components.Storage.DataDir,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
// Useful when the service can't recover from initialization failure
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
