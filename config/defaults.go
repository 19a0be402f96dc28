package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Blob store defaults
	v.SetDefault("database.path", "dacite.db")

	// Server defaults
	v.SetDefault("server.addr", ":8420")
	v.SetDefault("server.rate_limit", 50.0) // requests/second per client
	v.SetDefault("server.rate_burst", 100)

	// Sync defaults
	v.SetDefault("sync.name", "")
	v.SetDefault("sync.peers", []string{})

	// Logging defaults
	v.SetDefault("log.json", false)
}
