package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/hoofy-research/internal/report"
	"github.com/HendryAvila/hoofy-research/internal/research"
	"github.com/HendryAvila/hoofy-research/internal/server"
	"github.com/HendryAvila/hoofy-research/internal/tools"
)

func newAskCmd(c *cli) *cobra.Command {
	var (
		threshold float64
		format    string
		detail    string
		parallel  bool
		progress  bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Research one question and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != tools.FormatMarkdown && format != tools.FormatJSON {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, tools.FormatMarkdown, tools.FormatJSON)
			}
			opts, err := c.options()
			if err != nil {
				return err
			}
			r, err := server.NewResearch(opts)
			if err != nil {
				return err
			}
			defer r.Close()

			var callOpts []research.CallOption
			if cmd.Flags().Changed("threshold") {
				callOpts = append(callOpts, research.WithThreshold(threshold))
			}
			if cmd.Flags().Changed("parallel") {
				callOpts = append(callOpts, research.WithParallel(parallel))
			}

			if progress {
				errOut := cmd.ErrOrStderr()
				callOpts = append(callOpts, research.WithProgress(research.ProgressFunc(func(done, total int, msg string) {
					fmt.Fprintf(errOut, "[%3d/%d] %s\n", done, total, msg)
				})))
			}

			result, err := r.Orchestrator.Answer(cmd.Context(), strings.Join(args, " "), callOpts...)
			if err != nil {
				return err
			}

			out := report.Markdown(result, detail)
			if format == tools.FormatJSON {
				if out, err = report.JSON(result); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence threshold for this question (default: settings file)")
	cmd.Flags().StringVar(&format, "format", tools.FormatMarkdown, "output format: markdown or json")
	cmd.Flags().StringVar(&detail, "detail", report.DetailStandard, "markdown detail level: summary, standard or full")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "probe all sources at once (default: settings file)")
	cmd.Flags().BoolVar(&progress, "progress", false, "print progress to stderr")
	return cmd
}
