// Command graphcache serves a live, incrementally updated commit graph for
// a Git repository, and offers a couple of terminal-only commands for
// poking at the cache without a browser.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "graphcache",
	Short: "Incrementally cached commit graph for a Git repository",
	Long:  "graphcache builds an in-memory, lane-assigned commit graph from a repository's object store and serves it to a browser-based history viewer over HTTP and WebSocket.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .graphcache.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("repo", ".", "path to the repository to open")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("repo_path", rootCmd.PersistentFlags().Lookup("repo"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".graphcache")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("GRAPHCACHE")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we fall back to defaults.
	_ = viper.ReadInConfig()
}
