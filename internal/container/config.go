// Package container provides dependency injection and lifecycle management
// for the HR assistant following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// LLM provider names
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Language model configuration
	LLM LLMConfig

	// Server configuration
	Server ServerConfig

	// Export and snapshot configuration
	Export ExportConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// LLMConfig holds the intent extraction model settings.
type LLMConfig struct {
	// Provider selects the completion backend: "openai" or "gemini"
	Provider string

	// APIKey for the provider; optional for local OpenAI-compatible servers
	APIKey string

	// BaseURL overrides the provider endpoint (e.g. an Ollama server)
	BaseURL string

	// Model is the model to use (e.g., "gpt-4o-mini")
	Model string

	// Temperature controls randomness (0.0-1.0)
	Temperature float32

	// MaxTokens limits response length
	MaxTokens int

	// Timeout bounds one extraction
	Timeout time.Duration

	// PromptsPath overrides the compiled-in prompt file
	PromptsPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// ExportConfig holds settings for saved leave balance workbooks.
type ExportConfig struct {
	// Dir receives snapshots and default-named exports
	Dir string

	// SnapshotInterval schedules snapshots while serving; zero disables them
	SnapshotInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/hr.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0,
			MaxTokens:   512,
			Timeout:     60 * time.Second,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Export: ExportConfig{
			Dir: "data/exports",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		// A base URL without a key targets a local OpenAI-compatible server
		if c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.api_key or llm.base_url is required for provider %q", ProviderOpenAI)
		}
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", ProviderGemini)
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}

	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}
	if c.Export.SnapshotInterval < 0 {
		return fmt.Errorf("export.snapshot_interval must not be negative")
	}

	return nil
}
