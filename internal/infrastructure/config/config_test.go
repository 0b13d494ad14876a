package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "portfolio.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Seed)

	assert.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)

	assert.Equal(t, 5, cfg.RateLimit.ContactRequests)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.LoginWindow)

	assert.Equal(t, time.Second, cfg.Terminal.ExitDelay)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
	assert.Equal(t, def.Terminal, cfg.Terminal)
	assert.Equal(t, def.Client, cfg.Client)
	assert.Equal(t, def.CORS, cfg.CORS)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"ENVIRONMENT":         "production",
		"DATABASE_PATH":       ":memory:",
		"JWT_TTL":             "1h",
		"SMTP_ENABLED":        "true",
		"SMTP_PORT":           "2525",
		"MAX_FILE_SIZE":       "2048",
		"RATE_LIMIT_CONTACT":  "2",
		"LOG_LEVEL":           "debug",
		"FRONTEND_URL":        "https://example.dev",
		"CORS_ORIGINS":        "https://a.dev,https://b.dev",
		"TERMINAL_EXIT_DELAY": "250ms",
		"PORTFOLIO_API_URL":   "https://api.example.dev/api",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, 2525, cfg.Email.Port)
	assert.Equal(t, int64(2048), cfg.Upload.MaxFileSize)
	assert.Equal(t, 2, cfg.RateLimit.ContactRequests)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Terminal.ExitDelay)
	assert.Equal(t, "https://api.example.dev/api", cfg.Client.BaseURL)
	assert.Equal(t, []string{"https://example.dev", "https://a.dev", "https://b.dev"}, cfg.Origins())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 587, cfg.Email.Port)
}

func TestOriginsDeduplicates(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Origins())
}
