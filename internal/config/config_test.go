package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "HR_LLM_API_KEY", "HR_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	clearKeys(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/hr.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "data/seed", cfg.Seed.Dir)
	assert.Equal(t, "data/exports", cfg.Export.Dir)
	assert.Zero(t, cfg.Export.SnapshotInterval)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := chdirTemp(t)
	clearKeys(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/hr/hr.db
llm:
  provider: gemini
  model: gemini-2.5-flash
  timeout: 15s
server:
  port: 9090
logger:
  format: json
export:
  snapshot_interval: 24h
`), 0o644))

	t.Setenv("HR_SERVER_PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("OPENAI_API_KEY", "sk-ignored")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hr/hr.db", cfg.Database.Path)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 7070, cfg.Server.Port, "environment overrides file")
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 24*time.Hour, cfg.Export.SnapshotInterval)
	assert.Equal(t, "gm-key", cfg.LLM.APIKey, "provider key follows the provider")
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	chdirTemp(t)
	clearKeys(t)
	t.Setenv("HR_LLM_API_KEY", "sk-explicit")
	t.Setenv("OPENAI_API_KEY", "sk-conventional")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", cfg.LLM.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearKeys(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HR_DATABASE_PATH=from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("HR_DATABASE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Path: "hr.db"},
			LLM:      LLMConfig{Provider: "openai"},
			Server:   ServerConfig{Port: 8080},
			Logger:   LoggerConfig{Format: "json"},
			Export:   ExportConfig{Dir: "exports"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: "llm.provider"},
		{name: "temperature out of range", mutate: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "llm.temperature"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "bad log format", mutate: func(c *Config) { c.Logger.Format = "xml" }, wantErr: "logger.format"},
		{name: "no export dir", mutate: func(c *Config) { c.Export.Dir = "" }, wantErr: "export.dir"},
		{name: "negative snapshot interval", mutate: func(c *Config) { c.Export.SnapshotInterval = -time.Minute }, wantErr: "export.snapshot_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToContainerConfig(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Path: "hr.db", MaxOpenConns: 4},
		LLM:      LLMConfig{Provider: "gemini", APIKey: "k", Model: "m", Timeout: time.Second, PromptsPath: "p.yaml"},
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8081},
		Export:   ExportConfig{Dir: "out", SnapshotInterval: time.Hour},
	}

	cc := cfg.ToContainerConfig()
	assert.Equal(t, "hr.db", cc.Database.Path)
	assert.Equal(t, 4, cc.Database.MaxOpenConns)
	assert.Equal(t, "gemini", cc.LLM.Provider)
	assert.Equal(t, "p.yaml", cc.LLM.PromptsPath)
	assert.Equal(t, time.Second, cc.LLM.Timeout)
	assert.Equal(t, 8081, cc.Server.Port)
	assert.Equal(t, "out", cc.Export.Dir)
	assert.Equal(t, time.Hour, cc.Export.SnapshotInterval)
}
