package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, ".md", cfg.Extension)
	assert.Equal(t, 10, cfg.DefaultMaxResults)
}

func TestLoad(t *testing.T) {
	t.Run("Reads YAML File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("vault_path: /srv/vault\nport: 9000\nlog_format: json\ncache: true\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/vault", cfg.VaultPath)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, FormatJSON, cfg.LogFormat)
		assert.True(t, cfg.Cache)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("Environment Overrides File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0644))
		t.Setenv("BRAIN_PORT", "9100")
		t.Setenv("BRAIN_VAULT_PATH", "/env/vault")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Port)
		assert.Equal(t, "/env/vault", cfg.VaultPath)
	})

	t.Run("Empty File Keeps Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default().Port, cfg.Port)
	})

	t.Run("Unknown Field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("vault: /typo\n"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Missing Explicit File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("Typed Values", func(t *testing.T) {
		cfg := Default()
		err := cfg.ApplyEnv(envMap(map[string]string{
			"BRAIN_CACHE":               "true",
			"BRAIN_DEFAULT_MAX_RESULTS": "25",
			"BRAIN_CORS_ORIGINS":        "http://a.test, http://b.test",
			"BRAIN_LOG_LEVEL":           "debug",
		}))
		require.NoError(t, err)
		assert.True(t, cfg.Cache)
		assert.Equal(t, 25, cfg.DefaultMaxResults)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Collects Every Bad Value", func(t *testing.T) {
		cfg := Default()
		err := cfg.ApplyEnv(envMap(map[string]string{
			"BRAIN_PORT":  "eighty",
			"BRAIN_CACHE": "maybe",
		}))
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.Equal(t, 8000, cfg.Port)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Extension = "md"
	cfg.LogFormat = "xml"
	cfg.LogLevel = "loud"
	cfg.Port = 70000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := Default()
	cfg.LogFormat = FormatJSON
	cfg.LogLevel = "warn"

	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("vault.read_note.failed", "path", "a.md")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"vault.read_note.failed"`)

	level, err := ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
}
