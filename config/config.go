// Package config loads and watches the Dacite node configuration.
//
// Configuration comes from dacite.toml, merged with environment
// variables prefixed DACITE_ (e.g. DACITE_SERVER_ADDR), over built-in
// defaults. Precedence (lowest to highest): defaults < user config
// (~/.dacite/dacite.toml) < project config (./dacite.toml) < env vars.
package config

import (
	"github.com/dacite-io/dacite/errors"
)

// Config is the full node configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig configures the blob store backend.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" gives an ephemeral
	// store.
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// SyncConfig configures peer reconciliation.
type SyncConfig struct {
	// Name is this node's self-identified name in sync hellos.
	Name string `mapstructure:"name"`

	// Peers are ws:// sync endpoints reconciled on `dacite sync`.
	Peers []string `mapstructure:"peers"`
}

// LogConfig configures logging output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path cannot be empty")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	if c.Server.RateLimit < 0 {
		return errors.Newf("server.rate_limit must be >= 0, got %f", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 0 {
		return errors.Newf("server.rate_burst must be >= 0, got %d", c.Server.RateBurst)
	}
	return nil
}
