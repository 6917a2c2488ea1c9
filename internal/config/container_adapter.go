package config

import (
	"github.com/garyjia/hr-assistant/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		LLM: container.LLMConfig{
			Provider:    c.LLM.Provider,
			APIKey:      c.LLM.APIKey,
			BaseURL:     c.LLM.BaseURL,
			Model:       c.LLM.Model,
			Temperature: c.LLM.Temperature,
			MaxTokens:   c.LLM.MaxTokens,
			Timeout:     c.LLM.Timeout,
			PromptsPath: c.LLM.PromptsPath,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		Export: container.ExportConfig{
			Dir:              c.Export.Dir,
			SnapshotInterval: c.Export.SnapshotInterval,
		},
	}
}
