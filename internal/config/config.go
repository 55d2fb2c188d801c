// Package config provides configuration loading and validation for the
// chat builder CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags or environment variables.
type Config struct {
	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Override for the standard-tier model
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables persistence
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information

	// Server
	Addr string `json:"addr,omitempty"` // HTTP listen address, e.g. ":8080"
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills empty fields from environment variables.
// GEMINI_API_KEY, RESUME_CHAT_MODEL, DATABASE_URL and RESUME_CHAT_ADDR
// are consulted; values already set on the receiver win.
func (c *Config) FromEnv() *Config {
	result := *c
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.Model == "" {
		result.Model = os.Getenv("RESUME_CHAT_MODEL")
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if result.Addr == "" {
		result.Addr = os.Getenv("RESUME_CHAT_ADDR")
	}
	return &result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: api key is required (set GEMINI_API_KEY or 'api_key')")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}

	return result
}
