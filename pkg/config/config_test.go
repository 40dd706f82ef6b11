package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "97b41c52301f77ce508f55e66d17620e", cfg.Instagram.QueryHash)
	assert.Equal(t, 50, cfg.Instagram.CommentsPerPage)
	assert.Equal(t, "4", cfg.Instagram.SignatureKeyVersion)
	assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty query hash", func(c *Config) { c.Instagram.QueryHash = "" }},
		{"zero page size", func(c *Config) { c.Instagram.CommentsPerPage = 0 }},
		{"empty signature key", func(c *Config) { c.Instagram.SignatureKey = "" }},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
		{"negative retries", func(c *Config) { c.RateLimit.MaxRetries = -1 }},
		{"negative recoveries", func(c *Config) { c.RateLimit.MaxAuthRecoveries = -1 }},
		{"zero timeout", func(c *Config) { c.RateLimit.RequestTimeout = 0 }},
		{"empty output dir", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGCOMMENTS_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("IGCOMMENTS_MAX_RETRIES", "7")
	t.Setenv("IGCOMMENTS_OUTPUT_DIR", "/tmp/out")
	t.Setenv("IGCOMMENTS_SESSION_FILE", "/tmp/session.json")
	t.Setenv("IGCOMMENTS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 7, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "/tmp/out", cfg.Output.BaseDirectory)
	assert.Equal(t, "/tmp/session.json", cfg.Output.SessionFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("IGCOMMENTS_REQUESTS_PER_SECOND", "not-a-number")
	t.Setenv("IGCOMMENTS_MAX_RETRIES", "-5")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.MaxRetries)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rate_limit:
  requests_per_second: 0.8
  max_retries: 5
output:
  base_directory: custom_output
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 0.8, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 5, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "custom_output", cfg.Output.BaseDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults
	assert.Equal(t, "97b41c52301f77ce508f55e66d17620e", cfg.Instagram.QueryHash)
}

func TestLoadFromFileMissingExplicitPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	saved := DefaultConfig()
	saved.RateLimit.RequestsPerSecond = 0.25
	saved.RateLimit.RetryDelay = 2 * time.Second
	require.NoError(t, saved.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 0.25, loaded.RateLimit.RequestsPerSecond)
	assert.Equal(t, 2*time.Second, loaded.RateLimit.RetryDelay)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"rate":         0.5,
		"output":       "elsewhere",
		"session-file": "/tmp/s.json",
		"max-retries":  9,
		"log-level":    "debug",
	})

	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "elsewhere", cfg.Output.BaseDirectory)
	assert.Equal(t, "/tmp/s.json", cfg.Output.SessionFile)
	assert.Equal(t, 9, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSessionFilePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.SessionFile = "/explicit/session.json"
	path, err := cfg.SessionFilePath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/session.json", path)

	cfg.Output.SessionFile = ""
	path, err = cfg.SessionFilePath()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join("igcomments", "session.json"))
}
