// Package config provides stimflow configuration management.
// Priority: defaults < user < project < env
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all stimflow configuration.
type Config struct {
	Version int `yaml:"version"`

	Editor   EditorConfig   `yaml:"editor"`
	Playback PlaybackConfig `yaml:"playback"`
	Export   ExportConfig   `yaml:"export"`
	Recent   RecentConfig   `yaml:"recent"`
}

// EditorConfig holds the defaults applied when creating new stimulus events.
type EditorConfig struct {
	DefaultDurationMS int64   `yaml:"default_duration_ms"`
	DefaultVolume     float64 `yaml:"default_volume"`
	DefaultPosition   string  `yaml:"default_position"`
}

// PlaybackConfig controls the preview playback loop.
type PlaybackConfig struct {
	TickMS int     `yaml:"tick_ms"` // polling interval of the playback clock
	Speed  float64 `yaml:"speed"`   // playback rate multiplier
}

// ExportConfig controls export defaults.
type ExportConfig struct {
	DefaultFormat string `yaml:"default_format"`
	OutputDir     string `yaml:"output_dir"` // empty = alongside the input
}

// RecentConfig controls the recent-files list.
type RecentConfig struct {
	Max  int    `yaml:"max"`
	Path string `yaml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	stimflowDir := filepath.Join(homeDir, ".stimflow")

	return &Config{
		Version: 1,
		Editor: EditorConfig{
			DefaultDurationMS: 1000,
			DefaultVolume:     1.0,
			DefaultPosition:   "center",
		},
		Playback: PlaybackConfig{
			TickMS: 16, // ~60 polls per second
			Speed:  1.0,
		},
		Export: ExportConfig{
			DefaultFormat: "json",
		},
		Recent: RecentConfig{
			Max:  10,
			Path: filepath.Join(stimflowDir, "recent.json"),
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	for _, path := range m.getConfigPaths() {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but surface errors for existing ones
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".stimflow", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".stimflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Editor
	if src.Editor.DefaultDurationMS != 0 {
		m.config.Editor.DefaultDurationMS = src.Editor.DefaultDurationMS
	}
	if src.Editor.DefaultVolume != 0 {
		m.config.Editor.DefaultVolume = src.Editor.DefaultVolume
	}
	if src.Editor.DefaultPosition != "" {
		m.config.Editor.DefaultPosition = src.Editor.DefaultPosition
	}

	// Playback
	if src.Playback.TickMS != 0 {
		m.config.Playback.TickMS = src.Playback.TickMS
	}
	if src.Playback.Speed != 0 {
		m.config.Playback.Speed = src.Playback.Speed
	}

	// Export
	if src.Export.DefaultFormat != "" {
		m.config.Export.DefaultFormat = src.Export.DefaultFormat
	}
	if src.Export.OutputDir != "" {
		m.config.Export.OutputDir = src.Export.OutputDir
	}

	// Recent
	if src.Recent.Max != 0 {
		m.config.Recent.Max = src.Recent.Max
	}
	if src.Recent.Path != "" {
		m.config.Recent.Path = src.Recent.Path
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	// STIMFLOW_TICK_MS
	if v := os.Getenv("STIMFLOW_TICK_MS"); v != "" {
		var tick int
		if _, err := fmt.Sscanf(v, "%d", &tick); err == nil {
			m.config.Playback.TickMS = tick
		}
	}

	// STIMFLOW_EXPORT_FORMAT
	if v := os.Getenv("STIMFLOW_EXPORT_FORMAT"); v != "" {
		m.config.Export.DefaultFormat = v
	}

	// STIMFLOW_OUTPUT_DIR
	if v := os.Getenv("STIMFLOW_OUTPUT_DIR"); v != "" {
		m.config.Export.OutputDir = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".stimflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
