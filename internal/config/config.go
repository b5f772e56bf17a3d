// Package config loads settings for the aocd CLI.
//
// Precedence, lowest to highest: built-in defaults, global config file in
// the user config dir, local .aocd.* file found by walking up from the
// working directory, environment (after loading .env), command flags.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultSessionFile = ".session"
	DefaultDir         = "."
	DefaultBaseURL     = "https://adventofcode.com"
)

// Config holds the resolved CLI settings.
type Config struct {
	// SessionFile is the path to the file holding the session cookie value.
	SessionFile string

	// Dir is the storage root: inputs and submission records live under it.
	Dir string

	// BaseURL is the judge endpoint, overridable for testing.
	BaseURL string

	// PatternsFile optionally replaces the built-in response pattern table.
	PatternsFile string

	// Wait makes submissions sleep out one judge cooldown and retry once.
	Wait bool
}

// Load builds a Config from the current viper state, applying defaults
// and resolving paths.
func Load() (*Config, error) {
	cfg := &Config{
		SessionFile:  viper.GetString("session_file"),
		Dir:          viper.GetString("dir"),
		BaseURL:      viper.GetString("base_url"),
		PatternsFile: viper.GetString("patterns"),
		Wait:         viper.GetBool("wait"),
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = DefaultSessionFile
	}

	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	abs, err := filepath.Abs(c.Dir)
	if err != nil {
		return fmt.Errorf("invalid storage directory: %v", err)
	}

	c.Dir = abs

	if c.PatternsFile != "" {
		abs, err := filepath.Abs(c.PatternsFile)
		if err != nil {
			return fmt.Errorf("invalid patterns file path: %v", err)
		}

		c.PatternsFile = abs
	}

	return nil
}
