package bootstrap

import (
	"github.com/protoshare/protoshare/common/config"
	"github.com/protoshare/protoshare/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	skipMigration bool
	customLogger  *logger.Logger
	customConfig  *config.Config
}

// WithoutMigration skips the legacy-layout migration step
// Useful for tests that point the data root at a temp dir
func WithoutMigration() Option {
	return func(o *options) {
		o.skipMigration = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

func defaultOptions() *options {
	return &options{
		skipMigration: false,
	}
}
