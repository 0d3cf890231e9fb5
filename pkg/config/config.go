package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrisonrobin/gradary/pkg/storage"
)

const (
	xdgAppName = "gradary"
	configFile = "config.json"

	DefaultCalendar = "Study"
	DefaultMinutes  = 25
)

type Config struct {
	Backend      string `json:"backend"`
	DataDir      string `json:"data_dir,omitempty"`
	Calendar     string `json:"calendar"`
	FocusMinutes int    `json:"focus_minutes"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Backend:      storage.BackendFile,
		Calendar:     DefaultCalendar,
		FocusMinutes: DefaultMinutes,
	}
}

// Dir is the base directory for config and default data: ~/.config/gradary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// ResolveDataDir is where the store lives: DataDir if set, else base.
func (c *Config) ResolveDataDir(base string) string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return base
}

func (c *Config) Validate() error {
	switch c.Backend {
	case storage.BackendFile, storage.BackendBadger, storage.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownBackend, c.Backend)
	}
	if c.FocusMinutes <= 0 {
		return fmt.Errorf("focus_minutes must be positive, got %d", c.FocusMinutes)
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.Calendar == "" {
		c.Calendar = d.Calendar
	}
	if c.FocusMinutes <= 0 {
		c.FocusMinutes = d.FocusMinutes
	}
}

// Load reads config.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Save writes cfg to dir/config.json.
func Save(dir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, configFile)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
