// Package config loads runtime configuration for the atelier CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
package config

import "time"

// Config holds runtime settings for the atelier CLI.
//
// Fields:
//   - ServerURL: base URL of the control-plane HTTP API.
//   - ERPHost / ERPDatabase: the ERP instance the orders command talks to.
//   - BatchSize: rows per intent request during uploads.
//   - ConflictDelay: pause between upload attempts on a storage conflict.
type Config struct {
	ServerURL     string
	ERPHost       string
	ERPDatabase   string
	BatchSize     int
	ConflictDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ERPHost = "http://127.0.0.1:8069"
	c.ERPDatabase = "erp"
	c.BatchSize = 2
	c.ConflictDelay = 1500 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
