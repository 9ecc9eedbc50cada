package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
ledger_file: status.yaml
log_level: debug
color: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".grove-ledger.yml"), []byte(content), 0644))
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "status.yaml", cfg.LedgerFile)
	assert.Equal(t, "manifest.yaml", cfg.ManifestFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Color)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GROVE_LEDGER_LEDGER_FILE", "checklist.yaml")
	t.Setenv("GROVE_LEDGER_LOG_LEVEL", "trace")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "checklist.yaml", cfg.LedgerFile)
	assert.Equal(t, "trace", cfg.LogLevel)
}
