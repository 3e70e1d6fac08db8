package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadBarePortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.txt")
	require.NoError(t, os.WriteFile(path, []byte("9000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, DefaultStorageRoot, cfg.StorageRoot)
}

func TestLoadIniFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "securedropd.ini")
	content := "[server]\nport = 4433\nstorage_root = /tmp/blobs\ncatalog_path = /tmp/blobs/catalog.gob\nidle_timeout_seconds = 60\nlog_level = debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4433, cfg.Port)
	assert.Equal(t, "/tmp/blobs", cfg.StorageRoot)
	assert.Equal(t, "/tmp/blobs/catalog.gob", cfg.CatalogPath)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}
