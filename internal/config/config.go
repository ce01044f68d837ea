// Package config handles LifeLens configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Engine
	Engine EngineConfig `json:"engine"`

	// Narrative
	Narrative NarrativeConfig `json:"narrative"`
}

// ServerConfig for HTTP server
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// EngineConfig tunes the analysis pipeline
type EngineConfig struct {
	SlotWidthMS        int64 `json:"slot_width_ms"`
	CacheCapacity      int   `json:"cache_capacity"`
	DailyTTLMinutes    int   `json:"daily_ttl_minutes"`
	WeeklyTTLMinutes   int   `json:"weekly_ttl_minutes"`
	InsightsTTLMinutes int   `json:"insights_ttl_minutes"`

	// Correlation window tiers, milliseconds
	WindowImmediateMS int64 `json:"window_immediate_ms"`
	WindowShortMS     int64 `json:"window_short_ms"`
	WindowMediumMS    int64 `json:"window_medium_ms"`
	WindowLongMS      int64 `json:"window_long_ms"`
}

// NarrativeConfig for the local LLM
type NarrativeConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Model   string `json:"model"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".lifelens"),
		Server: ServerConfig{
			Port: 8420,
			Host: "localhost",
		},
		Engine: EngineConfig{
			SlotWidthMS:        5 * 60 * 1000,
			CacheCapacity:      1000,
			DailyTTLMinutes:    60,
			WeeklyTTLMinutes:   120,
			InsightsTTLMinutes: 30,
			WindowImmediateMS:  5 * 60 * 1000,
			WindowShortMS:      30 * 60 * 1000,
			WindowMediumMS:     2 * 60 * 60 * 1000,
			WindowLongMS:       4 * 60 * 60 * 1000,
		},
		Narrative: NarrativeConfig{
			Enabled: false,
			URL:     "http://localhost:11434",
			Model:   "llama3.2",
		},
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Override model server URL from env if set
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Narrative.URL = host
	}

	return cfg, nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DatabasePath returns the SQLite file location under the data directory
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "lifelens.db")
}
