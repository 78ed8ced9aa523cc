package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "data/storage.json", cfg.Store.DocumentPath)
	assert.Equal(t, "data/backups", cfg.Store.BackupDir)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, "local", cfg.Blob.Backend)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "pbkdf2", cfg.Auth.HashScheme)
	assert.Equal(t, int64(200<<20), cfg.Upload.MaxBytes)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
store:
  backend: github
github:
  owner: acme
  name: football-data
jwt:
  secret: from-file
  expiration: 90m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("BLOB_BACKEND", "s3")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "github", cfg.Store.Backend)
	assert.Equal(t, "acme/football-data", cfg.GitHub.Repo)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "s3", cfg.Blob.Backend)
}

func TestLoadConfigGitHubNeedsRepo(t *testing.T) {
	t.Setenv("STORE_BACKEND", "github")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingGitHubRepo)
}

func TestLoadConfigBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
