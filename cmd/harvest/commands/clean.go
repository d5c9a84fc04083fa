package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/harvest/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [id]...",
		Short: "Remove worktrees left behind by interrupted builds",
		Long: `clean force-removes the worktrees of the given identifiers and prunes the
repository's worktree list. Without identifiers it only prunes.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}
			return c.app.Clean(cmd.Context(), args, app.CleanOptions{Options: opts})
		},
	}
}
