package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "figsiner.db", cfg.Storage.Path)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figsiner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  host: http://localhost:1234
  model: local-model
  api_key: from-file
storage:
  path: /tmp/ws.db
design:
  tokens: tokens.json
log:
  level: debug
`), 0o644))
	t.Setenv("FIGSINER_API_KEY", "from-env")
	t.Setenv("FIGSINER_MODEL", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234", cfg.Model.Host)
	assert.Equal(t, "local-model", cfg.Model.Model)
	assert.Equal(t, "from-env", cfg.Model.APIKey)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "/tmp/ws.db", cfg.Storage.Path)
	assert.Equal(t, "tokens.json", cfg.Design.Tokens)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.True(t, cfg.Model.Complete())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unterminated"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSettings_Merge(t *testing.T) {
	base := Settings{Host: "h", Model: "m", APIKey: "k"}
	got := base.Merge(Settings{Model: "m2"})
	assert.Equal(t, Settings{Host: "h", Model: "m2", APIKey: "k"}, got)
	assert.False(t, Settings{Host: "h"}.Complete())
}
