package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("", nil)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "info", config.LogLevel)
	assert.False(t, config.Loader.FetchRemoteContexts)
	assert.Equal(t, 10*time.Second, config.Loader.Timeout)
	assert.Equal(t, 100, config.Loader.CacheSize)
	assert.Equal(t, []string{"https://vc-api.sphereon.io"}, config.Loader.StripIDHosts)
	assert.Equal(t, []string{"key", "web"}, config.Resolver.Methods)
	assert.Empty(t, config.Resolver.UniversalResolverURL)
	assert.Equal(t, KeyStoreMemory, config.KeyStore.Provider)
}

func TestLoadConfig_File(t *testing.T) {
	config, err := LoadConfig("ldcred.toml", nil)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "debug", config.LogLevel)
	assert.True(t, config.Loader.FetchRemoteContexts)
	assert.Equal(t, 5*time.Second, config.Loader.Timeout)
	assert.Equal(t, 50, config.Loader.CacheSize)
	assert.Equal(t, 24*time.Hour, config.Loader.CacheTTL)
	assert.Len(t, config.Loader.StripIDHosts, 2)
	assert.Equal(t, "https://dev.uniresolver.io/1.0/identifiers", config.Resolver.UniversalResolverURL)
	assert.Equal(t, KeyStoreBolt, config.KeyStore.Provider)

	loaded, err := config.Loader.Contexts()
	require.NoError(t, err)
	require.Contains(t, loaded, "https://example.com/contexts/degree/v1")
	assert.Contains(t, loaded["https://example.com/contexts/degree/v1"], "@context")

	require.NoError(t, config.ConfigureLogging())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.SetLevel(logrus.InfoLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("ldcred.yaml", nil)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.Error(t, err)

	write := func(content string) string {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	_, err = LoadConfig(write("[keystore]\nprovider = \"vault\"\n"), nil)
	assert.EqualError(t, err, "unsupported keystore provider: vault")

	_, err = LoadConfig(write("[keystore]\nprovider = \"bolt\"\npath = \"\"\n"), nil)
	assert.Error(t, err)

	_, err = LoadConfig(write("[resolver]\nmethods = []\n"), nil)
	assert.Error(t, err)

	config, err := LoadConfig(write("log_level = \"loud\"\n"), nil)
	require.NoError(t, err)
	assert.Error(t, config.ConfigureLogging())
}

func TestLoadConfig_Args(t *testing.T) {
	config, err := LoadConfig("", []string{"--log-level", "warn", "--loader-cache-size", "5"})
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, 5, config.Loader.CacheSize)
}
