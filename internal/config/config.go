package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Credential policies applied when the upstream API key is missing
const (
	PolicyFail           = "fail"
	PolicyWarnAndDegrade = "warn_and_degrade"
)

// DefaultPersona is the system prompt sent ahead of every user message
const DefaultPersona = "あなたは「ロボ助」という名前の、未来からやってきた愉快なサポートロボットです。" +
	"真面目な回答ではなく、ファンタジーで面白おかしく、想像力豊かに回答してください！" +
	"事実や正確性よりも、楽しさとエンターテイメント性を最優先してください。" +
	"時には壮大な冒険話や、魔法のような出来事、異世界の話などを織り交ぜて、ユーモアたっぷりに答えてください。" +
	"あなたは多次元ストレージから不思議なアイテムを取り出したり、時空を超えた冒険をしたり、魔法のようなテクノロジーを使ったりできます。" +
	"毎回、予想外で楽しい回答をしましょう！日本語で応答してください。"

// ErrMissingCredential is returned when no upstream API key is configured
// and the credential policy is PolicyFail.
var ErrMissingCredential = errors.New("upstream API key is not set")

// Config represents the full server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Persona  PersonaConfig  `yaml:"persona"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"`
	StaticDir    string        `yaml:"static_dir"`
	IndexFile    string        `yaml:"index_file"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// UpstreamConfig contains settings for the chat completion API
type UpstreamConfig struct {
	APIBase             string        `yaml:"api_base"`
	APIKey              string        `yaml:"api_key"`
	Model               string        `yaml:"model"`
	Temperature         float32       `yaml:"temperature"`
	MaxTokens           int           `yaml:"max_tokens"`
	Timeout             time.Duration `yaml:"timeout"`
	OnMissingCredential string        `yaml:"on_missing_credential"`
}

// PersonaConfig holds the system prompt injected into every upstream call
type PersonaConfig struct {
	Prompt string `yaml:"prompt"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "",
			Port:         3000,
			Mode:         "release",
			StaticDir:    ".",
			IndexFile:    "index.html",
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Upstream: UpstreamConfig{
			APIBase:             "https://api.openai.com/v1",
			Model:               "gpt-3.5-turbo",
			Temperature:         0.9,
			MaxTokens:           600,
			Timeout:             30 * time.Second,
			OnMissingCredential: PolicyWarnAndDegrade,
		},
		Persona: PersonaConfig{
			Prompt: DefaultPersona,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over the defaults.
// An empty path skips the file. Environment variables, including those from
// a .env file in the working directory, override file values.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from process environment variables
func (c *Config) ApplyEnv() error {
	setString("OPENAI_API_KEY", &c.Upstream.APIKey)
	setString("OPENAI_API_BASE", &c.Upstream.APIBase)
	setString("OPENAI_MODEL", &c.Upstream.Model)
	setString("ON_MISSING_CREDENTIAL", &c.Upstream.OnMissingCredential)
	setString("STATIC_DIR", &c.Server.StaticDir)
	setString("LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}

	switch c.Upstream.OnMissingCredential {
	case PolicyFail, PolicyWarnAndDegrade:
	default:
		return fmt.Errorf("invalid on_missing_credential %q, must be %s/%s",
			c.Upstream.OnMissingCredential, PolicyFail, PolicyWarnAndDegrade)
	}

	if c.Upstream.APIBase == "" {
		return errors.New("upstream.api_base is required")
	}
	if c.Upstream.Model == "" {
		return errors.New("upstream.model is required")
	}
	// go-openai omits a zero temperature from the request, so the upstream
	// would silently apply its own default.
	if c.Upstream.Temperature <= 0 || c.Upstream.Temperature > 2 {
		return fmt.Errorf("upstream.temperature %v out of range (0, 2]", c.Upstream.Temperature)
	}
	if c.Upstream.MaxTokens <= 0 {
		return errors.New("upstream.max_tokens must be positive")
	}
	if c.Upstream.Timeout < 0 {
		return errors.New("upstream.timeout must not be negative")
	}
	return nil
}

// Addr returns the host:port the server listens on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
