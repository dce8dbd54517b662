package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybkr/gitvista/internal/appconfig"
	"github.com/rybkr/gitvista/internal/cache"
	"github.com/rybkr/gitvista/internal/gitscan"
	"github.com/rybkr/gitvista/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open a repository, build its commit cache, and serve it over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "address to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ListenAddr = addr
	}

	repo, err := gitscan.Open(cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("opening repository at %s: %w", cfg.RepoPath, err)
	}

	var srv *server.Server
	facade := cache.NewFacade(func() {
		if srv != nil {
			srv.BroadcastUpdate()
		}
	})

	if err := server.Rescan(facade, repo); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	srv = server.NewServer(repo, facade, cfg.ListenAddr)
	return srv.Start()
}
