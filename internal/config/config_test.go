package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.10, cfg.Reorder.BufferPercent)
	assert.Equal(t, 0.25, cfg.Reorder.CriticalRatio)
	assert.Equal(t, 0.50, cfg.Reorder.HighRatio)
	assert.Equal(t, 0.75, cfg.Reorder.MediumRatio)
	assert.Equal(t, 300, cfg.Reorder.CacheTTLSecs)
	assert.Equal(t, 30, cfg.Alerts.ExpiryWindowDays)
	// Transfer restrictions are off unless configured.
	assert.Zero(t, cfg.Transfers.MaxTransferQuantity)
	assert.Zero(t, cfg.Transfers.RequireReferenceAbove)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_OverridesAndKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[reorder]
buffer_percent = 0.25
critical_ratio = 0.15

[transfers]
max_transfer_quantity = 500
require_reference_above = 50
`)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Reorder.BufferPercent)
	assert.Equal(t, 0.15, cfg.Reorder.CriticalRatio)
	// Unset keys keep the defaults.
	assert.Equal(t, 0.50, cfg.Reorder.HighRatio)
	assert.Equal(t, 30, cfg.Alerts.ExpiryWindowDays)
	assert.Equal(t, 500, cfg.Transfers.MaxTransferQuantity)
	assert.Equal(t, 50, cfg.Transfers.RequireReferenceAbove)
}

func TestLoadConfig_NegativeBufferRejected(t *testing.T) {
	path := writeConfigFile(t, `
[reorder]
buffer_percent = -0.5
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
