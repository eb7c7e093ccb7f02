package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SIMULCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data.xlsm", cfg.Workbook.Path)
	assert.Equal(t, "CHW hourly", cfg.Workbook.CHWSheet)
	assert.Equal(t, "MTHW hourly", cfg.Workbook.MTHWSheet)
	assert.Equal(t, "Timestamp", cfg.Workbook.TimestampColumn)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SIMULCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SIMULCHECK_SERVER_PORT", "9090")
	t.Setenv("SIMULCHECK_WORKBOOK_PATH", "/data/meters.xlsm")
	t.Setenv("SIMULCHECK_WORKBOOK_CHW_SHEET", "CHW 2024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/meters.xlsm", cfg.Workbook.Path)
	assert.Equal(t, "CHW 2024", cfg.Workbook.CHWSheet)
	// Untouched fields keep their defaults.
	assert.Equal(t, "MTHW hourly", cfg.Workbook.MTHWSheet)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := `
workbook:
  path: /srv/loads/campus.xlsm
  chw_sheet: CHW hourly
  mthw_sheet: MTHW hourly
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))
	t.Setenv("SIMULCHECK_CONFIG", configPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/loads/campus.xlsm", cfg.Workbook.Path)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := "workbook:\n  path: /srv/loads/campus.xlsm\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))
	t.Setenv("SIMULCHECK_CONFIG", configPath)
	t.Setenv("SIMULCHECK_WORKBOOK_PATH", "/data/override.xlsm")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/override.xlsm", cfg.Workbook.Path)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("SIMULCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SIMULCHECK_SERVER_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}
