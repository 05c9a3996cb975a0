package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AppConfig represents the complete tunable configuration
type AppConfig struct {
	Reorder   ReorderEngine        `toml:"reorder"`
	Transfers TransferRestrictions `toml:"transfers"`
	Alerts    AlertConfig          `toml:"alerts"`
}

// ReorderEngine contains the parameters of the reorder computation
type ReorderEngine struct {
	// BufferPercent is the fraction added on top of the raw shortage,
	// e.g. 0.10 orders 10% over the shortfall.
	BufferPercent float64 `toml:"buffer_percent"`
	// Urgency thresholds on total_stock/total_reorder, inclusive upper bounds.
	CriticalRatio float64 `toml:"critical_ratio"`
	HighRatio     float64 `toml:"high_ratio"`
	MediumRatio   float64 `toml:"medium_ratio"`
	CacheTTLSecs  int     `toml:"cache_ttl_seconds"`
}

// TransferRestrictions contains guard rails applied to transfers.
// A zero value disables the corresponding restriction.
type TransferRestrictions struct {
	MaxTransferQuantity   int `toml:"max_transfer_quantity"`
	RequireReferenceAbove int `toml:"require_reference_above"`
}

// AlertConfig contains scheduled job settings
type AlertConfig struct {
	ExpiryWindowDays   int `toml:"expiry_window_days"`
	ScanIntervalMins   int `toml:"scan_interval_minutes"`
	SuggestionInterval int `toml:"suggestion_interval_minutes"`
}

// DefaultConfig returns the configuration used when no TOML file is supplied.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Reorder: ReorderEngine{
			BufferPercent: 0.10,
			CriticalRatio: 0.25,
			HighRatio:     0.50,
			MediumRatio:   0.75,
			CacheTTLSecs:  300,
		},
		Alerts: AlertConfig{
			ExpiryWindowDays:   30,
			ScanIntervalMins:   60,
			SuggestionInterval: 30,
		},
	}
}

// LoadConfig loads configuration from a TOML file, filling unset sections
// with defaults.
func LoadConfig(filename string) (*AppConfig, error) {
	config := DefaultConfig()
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if config.Reorder.BufferPercent < 0 {
		return nil, fmt.Errorf("buffer_percent must not be negative, got %f", config.Reorder.BufferPercent)
	}
	return config, nil
}
