// Package config reads and writes tally.yaml, the file that marks a
// directory as a tally ledger.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file at the ledger root.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Git     GitConfig     `yaml:"git"`
}

// LedgerConfig identifies the ledger and its display currency.
type LedgerConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"` // ISO 4217 code, e.g. "USD"
}

// StorageConfig locates the data directory, relative to the ledger root.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Mode string `yaml:"mode"` // "production" or "development"
}

// GitConfig controls git snapshots of the ledger directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the Config written by `tally init`.
func Default(name, currency string) *Config {
	if currency == "" {
		currency = "USD"
	}
	return &Config{
		Ledger: LedgerConfig{
			Name:     name,
			Currency: currency,
		},
		Storage: StorageConfig{
			Dir: "data",
		},
		Log: LogConfig{
			Mode: "production",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}
