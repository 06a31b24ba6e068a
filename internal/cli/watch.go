package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldstone/redline/internal/gitx"
	"github.com/fieldstone/redline/internal/tui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the TUI and watch for changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := mustGetStringFlag(cmd.Root(), "repo")
			root, err := gitx.RepoRoot(repoPath)
			if err != nil {
				return fmt.Errorf("not a git repo: %w", err)
			}
			return tui.Run(root)
		},
	}
	return cmd
}
