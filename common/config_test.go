package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relayd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  base_url: https://api.provider.example
  timeout_seconds: 5
stamper:
  api_private_key: deadbeef
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.provider.example", cfg.Provider.BaseURL)
	assert.Equal(t, 5, cfg.Provider.TimeoutSeconds)

	key, err := cfg.StamperKey()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", key)
}

func TestStamperKeyFromFile(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "api.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("cafebabe\n"), 0o600))

	var cfg Config
	cfg.Stamper.APIPrivateKeyFile = keyPath

	key, err := cfg.StamperKey()
	require.NoError(t, err)
	assert.Equal(t, "cafebabe", key)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
