package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnv reads so the host environment
// does not leak into assertions.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_BASE", "OPENAI_MODEL",
		"ON_MISSING_CREDENTIAL", "STATIC_DIR", "LOG_LEVEL", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	testConfig := `server:
  port: 8080
  static_dir: "./public"
  max_body_bytes: 2048
upstream:
  api_base: "http://localhost:8001/v1"
  api_key: "sk-file"
  model: "gpt-4o-mini"
  temperature: 0.2
  max_tokens: 100
  timeout: 5s
  on_missing_credential: fail
persona:
  prompt: "You are a neutral assistant."
log:
  level: debug
  format: json
`

	err := os.WriteFile(configPath, []byte(testConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./public", cfg.Server.StaticDir)
	assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "index.html", cfg.Server.IndexFile, "unset keys keep defaults")

	assert.Equal(t, "http://localhost:8001/v1", cfg.Upstream.APIBase)
	assert.Equal(t, "sk-file", cfg.Upstream.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Upstream.Model)
	assert.InDelta(t, 0.2, cfg.Upstream.Temperature, 1e-6)
	assert.Equal(t, 100, cfg.Upstream.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, PolicyFail, cfg.Upstream.OnMissingCredential)

	assert.Equal(t, "You are a neutral assistant.", cfg.Persona.Prompt)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())

	t.Run("NonexistentFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(tmpDir, "nonexistent.yaml"))
		assert.Error(t, err)
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		invalidPath := filepath.Join(tmpDir, "invalid.yaml")
		require.NoError(t, os.WriteFile(invalidPath, []byte("invalid: yaml: {content"), 0644))

		_, err := LoadConfig(invalidPath)
		assert.Error(t, err)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		emptyPath := filepath.Join(tmpDir, "empty.yaml")
		require.NoError(t, os.WriteFile(emptyPath, []byte{}, 0644))

		cfg, err := LoadConfig(emptyPath)
		assert.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("NoPath", func(t *testing.T) {
		cfg, err := LoadConfig("")
		assert.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ".", cfg.Server.StaticDir)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Upstream.APIBase)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Upstream.Model)
	assert.InDelta(t, 0.9, cfg.Upstream.Temperature, 1e-6)
	assert.Equal(t, 600, cfg.Upstream.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, PolicyWarnAndDegrade, cfg.Upstream.OnMissingCredential)
	assert.Equal(t, DefaultPersona, cfg.Persona.Prompt)
	assert.Empty(t, cfg.Upstream.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_API_BASE", "http://stub/v1")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	t.Setenv("ON_MISSING_CREDENTIAL", PolicyFail)
	t.Setenv("STATIC_DIR", "/srv/www")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PORT", "4000")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "sk-env", cfg.Upstream.APIKey)
	assert.Equal(t, "http://stub/v1", cfg.Upstream.APIBase)
	assert.Equal(t, "gpt-4", cfg.Upstream.Model)
	assert.Equal(t, PolicyFail, cfg.Upstream.OnMissingCredential)
	assert.Equal(t, "/srv/www", cfg.Server.StaticDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 4000, cfg.Server.Port)

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("PORT", "three-thousand")
		assert.Error(t, Default().ApplyEnv())
	})
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upstream:\n  api_key: sk-file\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Upstream.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"PortZero", func(c *Config) { c.Server.Port = 0 }},
		{"PortTooLarge", func(c *Config) { c.Server.Port = 70000 }},
		{"BadMode", func(c *Config) { c.Server.Mode = "verbose" }},
		{"NoBodyLimit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"BadPolicy", func(c *Config) { c.Upstream.OnMissingCredential = "ignore" }},
		{"NoAPIBase", func(c *Config) { c.Upstream.APIBase = "" }},
		{"NoModel", func(c *Config) { c.Upstream.Model = "" }},
		{"TemperatureTooHigh", func(c *Config) { c.Upstream.Temperature = 2.5 }},
		{"TemperatureZero", func(c *Config) { c.Upstream.Temperature = 0 }},
		{"TemperatureNegative", func(c *Config) { c.Upstream.Temperature = -0.1 }},
		{"NoMaxTokens", func(c *Config) { c.Upstream.MaxTokens = 0 }},
		{"NegativeTimeout", func(c *Config) { c.Upstream.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestServerAddr(t *testing.T) {
	cfg := ServerConfig{Port: 3000}
	assert.Equal(t, ":3000", cfg.Addr())

	cfg.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
}
