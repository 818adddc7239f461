package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds tunables for session setup and stand-in pacing.
type GameConfig struct {
	// RosterURL is the base URL of the roster catalog service. Empty means
	// the built-in static cast is used.
	RosterURL string `json:"roster_url"`
	// RosterSize is the number of candidates dealt into each session board.
	RosterSize int `json:"roster_size"`
	// StandinDelayTicks is how many match ticks the stand-in waits between
	// its answer and its follow-up question. Zero asks immediately.
	StandinDelayTicks int `json:"standin_delay_ticks"`
}

const defaultRosterSize = 24

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil before loading.
func GetGameConfig() *GameConfig {
	return cfg
}

// RosterSize returns the configured board size, or the default when unset.
func RosterSize() int {
	if cfg == nil || cfg.RosterSize <= 0 {
		return defaultRosterSize
	}
	return cfg.RosterSize
}

// StandinDelayTicks returns the configured stand-in question delay.
func StandinDelayTicks() int {
	if cfg == nil || cfg.StandinDelayTicks < 0 {
		return 0
	}
	return cfg.StandinDelayTicks
}

// RosterURL returns the configured roster catalog base URL.
func RosterURL() string {
	if cfg == nil {
		return ""
	}
	return cfg.RosterURL
}
