// hoofy-research answers questions about a project from local knowledge.
//
// Usage:
//
//	hoofy-research serve [--metrics-addr=:9464]   # MCP server (stdio transport)
//	hoofy-research ask "Which database do we use?" [--threshold=0.8] [--format=json]
//	hoofy-research init [--threshold=0.7] [--project=shop]
//	hoofy-research version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/config"
	"github.com/HendryAvila/hoofy-research/internal/logging"
	"github.com/HendryAvila/hoofy-research/internal/server"
)

// Log formats accepted by --log-format.
const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

// cli holds state shared by every command.
type cli struct {
	verbose   bool
	logFormat string
	root      string
	logger    *zap.Logger
	settings  config.Store
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop(), settings: config.NewFileStore()}

	rootCmd := &cobra.Command{
		Use:   "hoofy-research",
		Short: "Local-first research MCP server",
		Long: `hoofy-research answers questions about the current project by probing
project files, a curated knowledge graph and the local environment, in that
order, and stops as soon as it is confident enough. When local knowledge is
not enough it recommends web searches instead of running them.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logFormat != logFormatJSON && c.logFormat != logFormatConsole {
				return fmt.Errorf("unknown log format %q (want %s or %s)", c.logFormat, logFormatJSON, logFormatConsole)
			}
			// Logs go to stderr; stdout belongs to the MCP transport and
			// to ask's output.
			c.logger = logging.New(logging.Options{
				Verbose: c.verbose,
				Console: c.logFormat == logFormatConsole,
				Output:  cmd.ErrOrStderr(),
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatJSON, "log encoding: json or console")
	rootCmd.PersistentFlags().StringVar(&c.root, "root", "", "project root (default: nearest directory with "+config.FileName+" or .git)")

	rootCmd.AddCommand(newServeCmd(c), newAskCmd(c), newInitCmd(c), newVersionCmd())
	return rootCmd
}

// projectRoot returns --root, or the nearest project root above the
// working directory.
func (c *cli) projectRoot() (string, error) {
	if c.root != "" {
		return c.root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindProjectRoot(wd)
}

// options resolves the project root and loads its settings.
func (c *cli) options() (server.Options, error) {
	root, err := c.projectRoot()
	if err != nil {
		return server.Options{}, err
	}

	settings, err := c.settings.Load(root)
	if err != nil {
		return server.Options{}, fmt.Errorf("loading settings: %w", err)
	}
	c.logger.Debug("settings loaded", zap.String("root", root), zap.Bool("file", config.Exists(root)))
	return server.Options{ProjectRoot: root, Settings: settings, Logger: c.logger}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hoofy-research v%s\n", server.Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
