package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WeatherConfig enables the weather badge on the rendered board.
type WeatherConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the preview server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// FeedURL is the ICS subscription endpoint.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// Timezone is the IANA display timezone (e.g. "America/New_York").
	// All-day and floating times without a TZID resolve against it.
	Timezone string `yaml:"timezone" json:"timezone"`

	// HorizonDays is how far forward the agenda window reaches.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// MaxItems caps the number of events on the board.
	MaxItems int `yaml:"max_items" json:"max_items"`

	// BoardTitle is the heading shown at the top of the rendered page.
	BoardTitle string `yaml:"board_title" json:"board_title"`

	// OutputPath is where the rendered HTML document is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	// CacheDir backs the feed fetcher's conditional-request cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic rebuilds when running in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Listen is the HTTP listen address for the preview server.
	Listen string `yaml:"listen" json:"listen"`

	Weather WeatherConfig `yaml:"weather" json:"weather"`

	// BasicAuth, if non-nil, protects all preview endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		FeedURL:     "",
		Timezone:    "America/New_York",
		HorizonDays: 45,
		MaxItems:    40,
		BoardTitle:  "This Week at the Atrium",
		OutputPath:  "./public/index.html",
		CacheDir:    "./var/feed-cache",
		RefreshCron: "*/15 * * * *",
		Listen:      "127.0.0.1:8080",
		Weather:     WeatherConfig{},
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 45
	}
	if c.MaxItems <= 0 {
		c.MaxItems = 40
	}
	if c.BoardTitle == "" {
		c.BoardTitle = "This Week at the Atrium"
	}
	if c.OutputPath == "" {
		c.OutputPath = "./public/index.html"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/feed-cache"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created as needed, file mode 0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".atriumcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
