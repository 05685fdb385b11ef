package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "talkd.db", cfg.DBPath)
	assert.Equal(t, 120, cfg.ReadTimeout)
	assert.Equal(t, 30, cfg.WriteTimeout)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\ndb_path: custom.db\n"), 0o644))

	t.Setenv("TALKD_PORT", "5000")

	cfg, err := Load(path)
	require.NoError(t, err)
	// Переменная окружения важнее файла
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 120, cfg.ReadTimeout)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
