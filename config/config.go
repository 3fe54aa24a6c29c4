package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FetchConfig tunes the paginated timeline fetch.
type FetchConfig struct {
	PageSize         int `toml:"page_size"`
	TopPostsPages    int `toml:"top_posts_pages"`
	HistoryPages     int `toml:"history_pages"`
	PageDelaySeconds int `toml:"page_delay_seconds"`
}

// WindowConfig sets the trailing time windows for the two fetch profiles.
type WindowConfig struct {
	TopPostsDays int `toml:"top_posts_days"`
	HistoryDays  int `toml:"history_days"`
}

// Config represents the top-level tuning configuration. Both fetch profiles
// go through the same timeline call; only these knobs differ between them.
type Config struct {
	Fetch   FetchConfig  `toml:"fetch"`
	Windows WindowConfig `toml:"windows"`
}

// Default returns the tuning knobs as observed in production: a single page
// for top posts, five pages for history, and a 3 second pause between pages.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			PageSize:         100,
			TopPostsPages:    1,
			HistoryPages:     5,
			PageDelaySeconds: 3,
		},
		Windows: WindowConfig{
			TopPostsDays: 30,
			HistoryDays:  365,
		},
	}
}

// LoadConfig reads tuning knobs from a TOML file. An empty path returns the
// defaults; fields left out of the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.normalize()
	return config, nil
}

// normalize replaces zero or negative knobs with their defaults so a partial
// config file never disables pagination outright.
func (c *Config) normalize() {
	defaults := Default()
	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 100 {
		c.Fetch.PageSize = defaults.Fetch.PageSize
	}
	if c.Fetch.TopPostsPages <= 0 {
		c.Fetch.TopPostsPages = defaults.Fetch.TopPostsPages
	}
	if c.Fetch.HistoryPages <= 0 {
		c.Fetch.HistoryPages = defaults.Fetch.HistoryPages
	}
	if c.Fetch.PageDelaySeconds < 0 {
		c.Fetch.PageDelaySeconds = defaults.Fetch.PageDelaySeconds
	}
	if c.Windows.TopPostsDays <= 0 {
		c.Windows.TopPostsDays = defaults.Windows.TopPostsDays
	}
	if c.Windows.HistoryDays <= 0 {
		c.Windows.HistoryDays = defaults.Windows.HistoryDays
	}
}

// PageDelay returns the pause honored before each subsequent page request.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.Fetch.PageDelaySeconds) * time.Second
}
