package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Mealguard", cfg.App.Name)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 2, cfg.AI.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.AI.RequestTimeout)
	assert.False(t, cfg.Pipeline.AllowTruncate)
	assert.Equal(t, 24*time.Hour, cfg.Pipeline.ReportTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  provider: ollama
  ollama_model: qwen2.5:7b
  max_attempts: 1
pipeline:
  allow_truncate: true
database:
  enabled: true
  driver: sqlite
  path: /tmp/prefs.db
`), 0o600))
	t.Setenv("MEALGUARD_AI_OLLAMA_HOST", "http://ollama:11434")
	t.Setenv("MEALGUARD_SERVER_PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.AI.Provider)
	assert.Equal(t, "qwen2.5:7b", cfg.AI.OllamaModel)
	assert.Equal(t, "http://ollama:11434", cfg.AI.OllamaHost)
	assert.Equal(t, 1, cfg.AI.MaxAttempts)
	assert.True(t, cfg.Pipeline.AllowTruncate)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/prefs.db", cfg.GetDSN())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:       AppConfig{Name: "Mealguard", Environment: "development"},
			Server:    ServerConfig{Port: 8080},
			AI:        AIConfig{Provider: ProviderGemini, RequestTimeout: time.Second, MaxAttempts: 2, Temperature: 0.7},
			RateLimit: RateLimitConfig{Enable: true, RequestsPerMin: 10},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.AI.Provider = "openai" }},
		{"non-positive timeout", func(c *Config) { c.AI.RequestTimeout = 0 }},
		{"too many attempts", func(c *Config) { c.AI.MaxAttempts = 3 }},
		{"zero attempts", func(c *Config) { c.AI.MaxAttempts = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"gemini key in production", func(c *Config) { c.App.Environment = "production" }},
		{"unknown driver", func(c *Config) { c.Database = DatabaseConfig{Enabled: true, Driver: "mysql"} }},
		{"rate limit without rate", func(c *Config) { c.RateLimit.RequestsPerMin = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: DriverPostgres, Host: "db", Port: 5432,
		Username: "mg", Password: "secret", Database: "mealguard", SSLMode: "disable",
	}}

	assert.Equal(t, "host=db port=5432 user=mg password=secret dbname=mealguard sslmode=disable", cfg.GetDSN())
}
