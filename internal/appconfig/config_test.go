package appconfig

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

func TestLoadDefaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"RepoPath", cfg.RepoPath, "."},
		{"ListenAddr", cfg.ListenAddr, ":7417"},
		{"PollInterval", cfg.PollInterval, "5s"},
		{"DebounceWindow", cfg.DebounceWindow, "100ms"},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "repo_path",
			envKey: "GRAPHCACHE_REPO_PATH",
			envVal: "/tmp/repo",
			field:  func(c Config) any { return c.RepoPath },
			want:   "/tmp/repo",
		},
		{
			name:   "listen_addr",
			envKey: "GRAPHCACHE_LISTEN_ADDR",
			envVal: ":9000",
			field:  func(c Config) any { return c.ListenAddr },
			want:   ":9000",
		},
		{
			name:   "verbose",
			envKey: "GRAPHCACHE_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("GRAPHCACHE")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}
