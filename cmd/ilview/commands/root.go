// Package commands implements the CLI commands for ilview.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go.trai.ch/ilview/internal/app"
	"go.trai.ch/ilview/internal/build"
)

// CLI represents the command line interface for ilview.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Tree(ctx context.Context, opts app.Options, paths []string, treeOpts app.TreeOptions) error
	Decompile(ctx context.Context, opts app.Options, path string, members []string) error
	Browse(ctx context.Context, opts app.Options, browseOpts app.BrowseOptions, paths []string) error
	Find(ctx context.Context, dir string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ilview",
		Short:         "Browse and decompile .NET assemblies from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	// Persistent flags go first so that -v stays with verbose and --version
	// gets no shorthand.
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to ilview.yaml (default: search the working directory and its parents)")
	flags.String("engine", "", "Decompiler engine executable")
	flags.StringP("language", "l", "", "Output language: csharp or il")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newTreeCmd())
	rootCmd.AddCommand(c.newDecompileCmd())
	rootCmd.AddCommand(c.newBrowseCmd())
	rootCmd.AddCommand(c.newFindCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
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

// options reads the global flags.
func options(cmd *cobra.Command) app.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	engine, _ := flags.GetString("engine")
	language, _ := flags.GetString("language")
	jsonLogs, _ := flags.GetBool("json-logs")
	verbose, _ := flags.GetBool("verbose")

	return app.Options{
		ConfigPath: configPath,
		Engine:     engine,
		Language:   language,
		JSONLogs:   jsonLogs,
		Verbose:    verbose,
	}
}
