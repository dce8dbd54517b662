package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybkr/gitvista/internal/appconfig"
	"github.com/rybkr/gitvista/internal/cache"
	"github.com/rybkr/gitvista/internal/gitscan"
	"github.com/rybkr/gitvista/internal/server"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find the next row whose author, committer, or message matches text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("from", 0, "row to start searching from")
	searchCmd.Flags().Bool("backward", false, "search toward row 0 instead of away from it")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	repo, err := gitscan.Open(cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("opening repository at %s: %w", cfg.RepoPath, err)
	}

	facade := cache.NewFacade(nil)
	if err := server.Rescan(facade, repo); err != nil {
		return fmt.Errorf("scanning repository: %w", err)
	}

	from, _ := cmd.Flags().GetInt("from")
	backward, _ := cmd.Flags().GetBool("backward")
	dir := cache.SearchForward
	if backward {
		dir = cache.SearchBackward
	}

	row := facade.Search(args[0], from, dir)
	if row < 0 {
		fmt.Println("no match")
		return nil
	}

	c := facade.CommitByRow(row)
	fmt.Printf("row %d: %s %s\n", row, c.Sha(), c.ShortLog())
	return nil
}
