package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/config"
)

func newInitCmd(c *cli) *cobra.Command {
	var (
		threshold float64
		project   string
		dataDir   string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.FileName + " with default settings",
		Long: `Creates ` + config.FileName + ` in the project root so the research settings
can be tuned and committed with the project. Existing files are kept unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.root
			if root == "" {
				root = "."
			}
			if config.Exists(root) && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", config.Path(root))
			}

			settings := config.Default()
			if cmd.Flags().Changed("threshold") {
				settings.ConfidenceThreshold = threshold
			}
			settings.KnowledgeGraph.Project = project
			settings.KnowledgeGraph.DataDir = dataDir

			if err := c.settings.Save(root, settings); err != nil {
				return err
			}
			c.logger.Debug("settings written", zap.String("path", config.Path(root)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.Path(root))
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence threshold to store (default: built-in default)")
	cmd.Flags().StringVar(&project, "project", "", "scope knowledge-graph searches to this project")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "knowledge-graph directory (default: ~/.hoofy-research)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}
