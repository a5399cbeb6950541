package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, "file", c.Storage.Driver)
	assert.Equal(t, "https://api.themoviedb.org/3", c.TMDB.BaseURL)
	assert.Equal(t, 10, c.Security.BcryptCost)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	yaml := "storage:\n  driver: redis\n  prefix: \"x:\"\ntmdb:\n  language: en-US\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_TMDB_APIKEY", "secret-key")
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", c.Storage.Driver)
	assert.Equal(t, "x:", c.Storage.Prefix)
	assert.Equal(t, "en-US", c.TMDB.Language)
	assert.Equal(t, "secret-key", c.TMDB.APIKey)
	assert.Equal(t, 9090, c.App.HTTP.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: sqlite\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: gorm\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err, "gorm needs a dsn")
}
