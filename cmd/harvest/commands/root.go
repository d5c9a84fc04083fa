// Package commands implements the CLI commands for harvest.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/harvest/internal/app"
	"go.trai.ch/harvest/internal/build"
	"go.trai.ch/harvest/internal/core/domain"
)

// Usage is printed when no identifiers are given.
const Usage = "Usage: harvest [flags] <ID1> [ID2] [ID3] ..."

// CLI represents the command line interface for harvest.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, ids []string, opts app.RunOptions) error
	Clean(ctx context.Context, ids []string, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "harvest [flags] <id>...",
		Short: "Build every identifier in its own git worktree and collect the results",
		Long: `harvest moves inputs/<id> into a fresh git worktree per identifier, runs the
build there and copies the produced artifact to outputs/<id>/.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), Usage)
				return domain.ErrNoIdentifiers
			}

			opts, err := options(cmd)
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), args, app.RunOptions{Options: opts})
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("base-dir", "C", ".", "Directory containing inputs/, outputs/ and the git repository")
	flags.StringP("config", "c", domain.ConfigFileName, "Config file, relative to the base directory")
	flags.IntP("concurrency", "j", 0, "Maximum number of builds running at once (0 = unbounded, default from config or CPU count)")
	flags.String("baseline", "", "Git reference every worktree is created from (default from config or \"main\")")
	flags.Bool("json", false, "Write progress logs as JSON")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// options reads the persistent flags shared by all commands.
func options(cmd *cobra.Command) (app.Options, error) {
	flags := cmd.Flags()

	baseDir, err := flags.GetString("base-dir")
	if err != nil {
		return app.Options{}, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return app.Options{}, err
	}
	baseline, err := flags.GetString("baseline")
	if err != nil {
		return app.Options{}, err
	}
	jsonLogs, err := flags.GetBool("json")
	if err != nil {
		return app.Options{}, err
	}

	opts := app.Options{
		BaseDir:    baseDir,
		ConfigPath: configPath,
		Baseline:   baseline,
		JSONLogs:   jsonLogs,
	}

	// The config file decides unless the flag was given explicitly.
	if flags.Changed("concurrency") {
		n, err := flags.GetInt("concurrency")
		if err != nil {
			return app.Options{}, err
		}
		opts.Concurrency = &n
	}

	return opts, nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
