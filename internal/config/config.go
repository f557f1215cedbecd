// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/tangent/internal/buffer"
	"github.com/bethropolis/tangent/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger logger.Config `toml:"logger"`
	Buffer BufferConfig  `toml:"buffer"`
	Editor EditorConfig  `toml:"editor"`

	// Plugins holds one table per plugin, e.g. [plugins.autosave].
	Plugins map[string]map[string]interface{} `toml:"plugins"`
}

// BufferConfig tunes text storage.
type BufferConfig struct {
	InitialCapacity  int    `toml:"initial_capacity"`
	MinGap           int    `toml:"min_gap"`
	PageSize         int    `toml:"page_size"`
	MaxResidentPages int    `toml:"max_resident_pages"`
	PagedThreshold   int64  `toml:"paged_threshold"`
	SwapDir          string `toml:"swap_dir"`
	SwapBackend      string `toml:"swap_backend"`
	ForcePaged       bool   `toml:"force_paged"`
}

// EditorConfig holds editing behaviour settings.
type EditorConfig struct {
	HistoryLimit    int  `toml:"history_limit"`
	SystemClipboard bool `toml:"system_clipboard"`
	TabWidth        int  `toml:"tab_width"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Buffer: BufferConfig{
			InitialCapacity:  buffer.DefaultInitialCapacity,
			MinGap:           buffer.DefaultMinGap,
			PageSize:         DefaultPageSize,
			MaxResidentPages: DefaultMaxResidentPages,
			PagedThreshold:   DefaultPagedThreshold,
			SwapBackend:      buffer.BackendFiles,
		},
		Editor: EditorConfig{
			HistoryLimit:    DefaultHistoryLimit,
			SystemClipboard: SystemClipboard,
			TabWidth:        DefaultTabWidth,
		},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName), nil
}

// loadFromFile decodes filePath on top of cfg. A missing file is not an
// error; the returned bool reports whether the file was read.
func loadFromFile(filePath string, cfg *Config) (bool, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}
	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return false, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Config file '%s': unrecognized keys: %v", filePath, undecoded)
	}
	return true, nil
}

// validate resets invalid values to their defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}

	b := &c.Buffer
	if b.InitialCapacity <= 0 {
		b.InitialCapacity = defaults.Buffer.InitialCapacity
	}
	if b.MinGap <= 0 {
		b.MinGap = defaults.Buffer.MinGap
	}
	if b.PageSize <= 0 {
		b.PageSize = defaults.Buffer.PageSize
	}
	if b.MaxResidentPages < buffer.MinResidentPages {
		b.MaxResidentPages = defaults.Buffer.MaxResidentPages
	}
	if b.PagedThreshold <= 0 {
		b.PagedThreshold = defaults.Buffer.PagedThreshold
	}
	switch b.SwapBackend {
	case buffer.BackendFiles, buffer.BackendSQLite:
	default:
		logger.Warnf("Config: unknown swap backend %q, using %q", b.SwapBackend, buffer.BackendFiles)
		b.SwapBackend = buffer.BackendFiles
	}

	if c.Editor.HistoryLimit <= 0 {
		c.Editor.HistoryLimit = defaults.Editor.HistoryLimit
	}
	if c.Editor.TabWidth <= 0 {
		c.Editor.TabWidth = defaults.Editor.TabWidth
	}
}

// LoadConfig merges defaults, the config file and flag overrides, then
// validates the result. An empty configFilePath means the default location.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	path := configFilePath
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	var loadErr error
	if path != "" {
		if _, err := loadFromFile(path, cfg); err != nil {
			// Keep going with defaults; the caller decides whether to abort.
			loadErr = err
			cfg = NewDefaultConfig()
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}
	cfg.validate()
	return cfg, loadErr
}

// PluginValue returns key from the [plugins.<name>] table.
func (c *Config) PluginValue(name, key string) (interface{}, bool) {
	table, ok := c.Plugins[name]
	if !ok {
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}

// BufferOptions converts the [buffer] table into buffer.Options.
func (c *Config) BufferOptions() buffer.Options {
	return buffer.Options{
		InitialCapacity:  c.Buffer.InitialCapacity,
		MinGap:           c.Buffer.MinGap,
		PageSize:         c.Buffer.PageSize,
		MaxResidentPages: c.Buffer.MaxResidentPages,
		PagedThreshold:   c.Buffer.PagedThreshold,
		SwapDir:          c.Buffer.SwapDir,
		SwapBackend:      c.Buffer.SwapBackend,
		ForcePaged:       c.Buffer.ForcePaged,
	}
}
