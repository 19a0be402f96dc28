package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedViper() *viper.Viper {
	// Isolated viper instance without loading user/project config.
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithViper(isolatedViper())
	require.NoError(t, err)

	assert.Equal(t, "dacite.db", cfg.Database.Path)
	assert.Equal(t, ":8420", cfg.Server.Addr)
	assert.Equal(t, 50.0, cfg.Server.RateLimit)
	assert.Equal(t, 100, cfg.Server.RateBurst)
	assert.Empty(t, cfg.Sync.Peers)
	assert.False(t, cfg.Log.JSON)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadWithViper(isolatedViper())
	require.NoError(t, err)

	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg, _ = LoadWithViper(isolatedViper())
	cfg.Server.RateLimit = -1
	assert.Error(t, cfg.Validate())

	cfg, _ = LoadWithViper(isolatedViper())
	cfg.Server.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dacite.toml")
	content := `
[database]
path = "custom.db"

[server]
addr = ":9000"
rate_limit = 10.0

[sync]
name = "node-a"
peers = ["ws://peer-1:8420/sync", "ws://peer-2:8420/sync"]

[log]
json = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.Database.Path)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10.0, cfg.Server.RateLimit)
	assert.Equal(t, "node-a", cfg.Sync.Name)
	assert.Len(t, cfg.Sync.Peers, 2)
	assert.True(t, cfg.Log.JSON)

	// Unset keys keep their defaults.
	assert.Equal(t, 100, cfg.Server.RateBurst)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFromFile_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dacite.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nrate_limit = -5.0\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err, "validation must run on file loads")
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dacite.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Stop()
	w.debouncePeriod = 50 * time.Millisecond

	reloaded := make(chan *Config, 1)
	w.OnReload(func(c *Config) error {
		reloaded <- c
		return nil
	})
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9001\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, ":9001", cfg.Server.Addr)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload callback never fired")
	}
}

func TestReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Two loads return the cached pointer until Reset.
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.Same(t, a, b)

	Reset()
	c, err := Load()
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
