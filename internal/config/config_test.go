package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultSessionFile, cfg.SessionFile)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.False(t, cfg.Wait)
	assert.Empty(t, cfg.PatternsFile)
	assert.True(t, filepath.IsAbs(cfg.Dir), "storage dir should be resolved to an absolute path")
}

func TestLoad_FromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("session_file", "/secrets/.session")
	viper.Set("dir", t.TempDir())
	viper.Set("base_url", "http://localhost:8080")
	viper.Set("patterns", "patterns.yml")
	viper.Set("wait", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/secrets/.session", cfg.SessionFile)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.True(t, cfg.Wait)
	assert.True(t, filepath.IsAbs(cfg.PatternsFile))
}
