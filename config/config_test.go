package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 7*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 0.7, cfg.Pricing.B2BRatio)
	assert.Equal(t, 1.15, cfg.Pricing.PublicRatio)
	assert.True(t, cfg.Wizard.ProgramFallback)
	assert.Equal(t, "classic", cfg.Wizard.PreviewStyle)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.YouTube.APIKey)
	assert.Equal(t, "https://www.googleapis.com/youtube/v3", cfg.YouTube.BaseURL)
	assert.Equal(t, "travel", cfg.YouTube.QueryPrefix)
	assert.Equal(t, 2, cfg.YouTube.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.YouTube.Timeout)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  addr: ":9000"
  cors_origins: ["https://agency.test"]
session:
  backend: redis
  ttl: 2h
redis:
  address: "redis:6379"
logging:
  level: DEBUG
  format: json
postgres:
  host: db
  password: secret
youtube:
  max_results: 0
  timeout: 0s
`)
	t.Setenv("TRIPWIZARD_LLM_API_KEY", "sk-test")
	t.Setenv("TRIPWIZARD_SERVER_ADDR", ":9100")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env beats file")
	assert.Equal(t, "sk-test", cfg.LLM.APIKey, "env reaches keys absent from the file")
	assert.Equal(t, []string{"https://agency.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.YouTube.MaxResults, "blanked values fall back")
	assert.Equal(t, 5*time.Second, cfg.YouTube.Timeout)
	assert.Equal(t, "host=db port=5432 user=tripwizard password=secret dbname=tripwizard sslmode=disable", cfg.Postgres.DSN())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRIPWIZARD_PLACES_API_KEY=from-dotenv\n"), 0o600))
	t.Setenv("TRIPWIZARD_PLACES_API_KEY", "")
	os.Unsetenv("TRIPWIZARD_PLACES_API_KEY")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Places.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"session backend": "session:\n  backend: etcd\n",
		"trips backend":   "trips:\n  backend: mongo\n",
		"log level":       "logging:\n  level: verbose\n",
		"preview style":   "wizard:\n  preview_style: brutalist\n",
		"ratios":          "pricing:\n  b2b_ratio: -1\n",
		"yaml":            "server: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
