package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1_000_000, cfg.Engine.MaxCells)
	assert.Equal(t, 4444, cfg.Server.TCPPort)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labcheck.yaml")
	yml := `
log:
  level: debug
engine:
  max_cells: 5000
server:
  allowed_origins: ["https://lab.example.com"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5000, cfg.Engine.MaxCells)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr, "unset keys keep defaults")
	assert.Equal(t, []string{"https://lab.example.com"}, cfg.Server.AllowedOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvMaxCells, "42")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 42, cfg.Engine.MaxCells)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.HTTPAddr)
}

func TestBadValues(t *testing.T) {
	t.Run("env not a number", func(t *testing.T) {
		t.Setenv(EnvTCPPort, "forty")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("unknown level", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "chatty")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Log.SeqURL = "http://localhost:5341"

	cfg.Server.SetsDir = "formula-sets"

	require.NoError(t, Save(path, cfg, false))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	err = Save(path, Default(), false)
	assert.ErrorIs(t, err, os.ErrExist, "existing file is kept without overwrite")

	require.NoError(t, Save(path, Default(), true))
	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestEnvSetsDir(t *testing.T) {
	t.Setenv(EnvSetsDir, "/srv/labcheck/sets")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/labcheck/sets", cfg.Server.SetsDir)
}
