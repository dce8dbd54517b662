// Package appconfig loads graphcache's runtime configuration from a config
// file, GRAPHCACHE_* environment variables, and CLI flags, in that order
// of increasing precedence.
package appconfig

import "github.com/spf13/viper"

// Config holds everything the server needs to watch a repository and
// serve its cache. Values are populated from .graphcache.toml,
// GRAPHCACHE_* env vars, and CLI flags. PollInterval and DebounceWindow are
// loaded but not read by internal/server, which polls every 5s and
// debounces watch events by 100ms.
type Config struct {
	RepoPath       string `mapstructure:"repo_path"`
	ListenAddr     string `mapstructure:"listen_addr"`
	PollInterval   string `mapstructure:"poll_interval"`
	DebounceWindow string `mapstructure:"debounce_window"`
	Verbose        bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// value not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("repo_path", ".")
	viper.SetDefault("listen_addr", ":7417")
	viper.SetDefault("poll_interval", "5s")
	viper.SetDefault("debounce_window", "100ms")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
