package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:   "redline",
		Short: "Diff-first TUI for inspecting and line-editing git changes",
		Long:  "Redline: explore git diffs side by side and edit changed lines in place.",
	}

	root.PersistentFlags().StringP("repo", "r", ".", "Path to repository root (default: current dir)")

	root.AddCommand(newWatchCmd())

	if err := root.Execute(); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		os.Exit(2)
	}
	return v
}
