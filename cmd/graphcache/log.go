package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rybkr/gitvista/internal/appconfig"
	"github.com/rybkr/gitvista/internal/cache"
	"github.com/rybkr/gitvista/internal/gitscan"
	"github.com/rybkr/gitvista/internal/server"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the cached commit graph to the terminal, one line per row",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().Int("limit", 50, "maximum number of rows to print")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
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

	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	limit, _ := cmd.Flags().GetInt("limit")
	count := facade.Count()
	if limit < count {
		count = limit
	}

	for row := 0; row < count; row++ {
		c := facade.CommitByRow(row)
		if c == nil {
			continue
		}
		printRow(c, width)
	}
	return nil
}

func printRow(c *cache.CommitInfo, width int) {
	graph := renderLanes(c)
	sha := string(c.Sha())
	if len(sha) > 7 {
		sha = sha[:7]
	}

	line := fmt.Sprintf("%s %s %s", graph, sha, c.ShortLog())
	if len(line) > width {
		line = line[:width]
	}
	fmt.Println(line)
}

func renderLanes(c *cache.CommitInfo) string {
	var b strings.Builder
	for i := 0; i < c.LanesCount(); i++ {
		switch c.Lane(i).Kind {
		case cache.LaneInitial:
			b.WriteByte('*')
		case cache.LaneFork:
			b.WriteByte('|')
		case cache.LaneMergeSource:
			b.WriteByte('\\')
		default:
			b.WriteByte('|')
		}
	}
	if b.Len() == 0 {
		b.WriteByte('*')
	}
	return b.String()
}
