// Package config loads user preferences from an optional TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user preferences read from the config file. Command-line
// flags override anything set here.
type Config struct {
	// Station is the default ICAO station code to fetch when none is given.
	Station string `toml:"station"`
	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`
	// NoRaw suppresses printing the raw report before the decoded output.
	NoRaw bool `toml:"no_raw"`
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "tafcast", "config.toml"), nil
}

// Load reads the config file at path. A missing file is not an error; the
// zero Config is returned instead.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}
