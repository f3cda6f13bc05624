package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Ingestion   IngestionConfig `toml:"ingestion"`
	Search      SearchConfig    `toml:"search"`
	Retention   RetentionConfig `toml:"retention"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// EmbeddingConfig controls the embedding batcher and provider limits
type EmbeddingConfig struct {
	Model         string `toml:"model"` // Embedding model name (default: "gemini-embedding-001")
	Dimension     int    `toml:"dimension" validate:"gt=0"`
	BatchSize     int    `toml:"batch_size" validate:"gt=0"`
	BatchDelay    string `toml:"batch_delay"`     // Pacing delay between batches, duration string
	MaxInputChars int    `toml:"max_input_chars"` // Hard per-item input cap before submission
}

// IngestionConfig controls document processing behavior
type IngestionConfig struct {
	ChunkTokenBudget  int `toml:"chunk_token_budget"`  // Soft token budget per chunk (default: 1000)
	InlineTokenBudget int `toml:"inline_token_budget"` // Reduced budget for inline file uploads
}

// SearchConfig contains configuration for retrieval behavior
type SearchConfig struct {
	DefaultThreshold float64 `toml:"default_threshold" validate:"gte=0,lte=1"`
	DefaultLimit     int     `toml:"default_limit" validate:"gt=0"`
	MaxLimit         int     `toml:"max_limit" validate:"gt=0"`
}

// RetentionConfig controls the scheduled purge of soft-deleted rows
type RetentionConfig struct {
	Enabled    bool   `toml:"enabled"`
	Schedule   string `toml:"schedule"`    // Cron schedule format
	GraceDays  int    `toml:"grace_days"`  // Soft-delete grace window in days
	PurgeBatch int    `toml:"purge_batch"` // Max rows deleted per run
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`   // Vision/chat model (default: "gemini-2.0-flash")
	Timeout string `toml:"timeout"` // Operation timeout as duration string (default: "2m")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`      // Model for vision/summary operations
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 4096)
	Timeout   string `toml:"timeout"`    // Operation timeout as duration string (default: "2m")
}

// DefaultConfig returns a config populated with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8885,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/memoria",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Embedding: EmbeddingConfig{
			Model:         "gemini-embedding-001",
			Dimension:     1536,
			BatchSize:     5,
			BatchDelay:    "500ms",
			MaxInputChars: 8000,
		},
		Ingestion: IngestionConfig{
			ChunkTokenBudget:  1000,
			InlineTokenBudget: 500,
		},
		Search: SearchConfig{
			DefaultThreshold: 0.7,
			DefaultLimit:     10,
			MaxLimit:         100,
		},
		Retention: RetentionConfig{
			Enabled:    true,
			Schedule:   "0 3 * * *",
			GraceDays:  30,
			PurgeBatch: 500,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "2m",
		},
		Claude: ClaudeConfig{
			Model:     "claude-haiku-3-5-20241022",
			MaxTokens: 4096,
			Timeout:   "2m",
		},
	}
}

// LoadConfig loads configuration from TOML files with environment overrides.
// Later files override earlier ones; env vars override everything.
func LoadConfig(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(c.Embedding.BatchDelay); err != nil {
		return fmt.Errorf("invalid embedding.batch_delay %q: %w", c.Embedding.BatchDelay, err)
	}
	if c.Retention.GraceDays < 0 {
		return fmt.Errorf("retention.grace_days cannot be negative")
	}

	return nil
}

// BatchDelayDuration returns the parsed inter-batch pacing delay
func (c *EmbeddingConfig) BatchDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.BatchDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GraceWindow returns the soft-delete grace window as a duration
func (c *RetentionConfig) GraceWindow() time.Duration {
	return time.Duration(c.GraceDays) * 24 * time.Hour
}

// applyEnvOverrides applies MEMORIA_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MEMORIA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("MEMORIA_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("MEMORIA_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("MEMORIA_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MEMORIA_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("MEMORIA_ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("MEMORIA_EMBED_DIMENSION"); v != "" {
		if dim, err := strconv.Atoi(v); err == nil && dim > 0 {
			config.Embedding.Dimension = dim
		}
	}
}
