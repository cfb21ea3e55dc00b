package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("protoshare")
	require.NoError(t, err)

	assert.Equal(t, "protoshare", cfg.Service.Name)
	assert.Equal(t, 3000, cfg.Service.Port)
	assert.Equal(t, "development", cfg.Service.Environment)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "public", cfg.Storage.PublicDir)
	assert.Equal(t, 200, cfg.Upload.MaxUploadMB)
	assert.Equal(t, 8, cfg.Upload.SlugLength)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_DIR", "/var/lib/protoshare")
	t.Setenv("MAX_UPLOAD_MB", "50")
	t.Setenv("SLUG_LENGTH", "12")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "5.5")

	cfg, err := Load("protoshare")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, "/var/lib/protoshare", cfg.Storage.DataDir)
	assert.Equal(t, 50, cfg.Upload.MaxUploadMB)
	assert.Equal(t, 12, cfg.Upload.SlugLength)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5.5, cfg.RateLimit.RPS)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MAX_UPLOAD_MB", "lots")

	cfg, err := Load("protoshare")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Service.Port)
	assert.Equal(t, 200, cfg.Upload.MaxUploadMB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service: ServiceConfig{Port: 3000},
			Storage: StorageConfig{DataDir: "data"},
			Upload:  UploadConfig{MaxUploadMB: 200, SlugLength: 8},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Service.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Service.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.DataDir = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Upload.MaxUploadMB = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Upload.SlugLength = 3
	assert.Error(t, cfg.Validate())
}

func TestBodyLimit(t *testing.T) {
	cfg := &Config{Upload: UploadConfig{MaxUploadMB: 200}}
	assert.Equal(t, "200M", cfg.BodyLimit())
}
