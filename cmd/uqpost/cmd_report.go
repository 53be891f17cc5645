package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/pipeline"
	"github.com/vecma/uqpost/internal/reporting"
)

func newReportCommand() *cobra.Command {
	var (
		qois     []string
		format   string
		htmlPath string
	)

	cmd := &cobra.Command{
		Use:   "report <campaign-id>",
		Short: "Print a stored analysis result",
		Long: `Report loads the analysis result saved for a campaign and prints its
moments and sensitivity table. Use --html to also render the report to an
HTML file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			result, err := pipeline.NewRunner(pipeline.WithStore(p.store)).LoadResult(args[0])
			if err != nil {
				return err
			}

			report, err := reporting.NewReport(result, qois)
			if err != nil {
				return reportingErr(err)
			}
			if htmlPath != "" {
				html, err := report.HTML()
				if err != nil {
					return reportingErr(err)
				}
				if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
					return reportingErr(fmt.Errorf("writing %s: %w", htmlPath, err))
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", htmlPath) //nolint:errcheck
			}
			return reportingErr(writeReport(cmd.OutOrStdout(), report, format))
		},
	}

	cmd.Flags().StringSliceVarP(&qois, "qoi", "q", nil, "Restrict the report to these QoIs")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, markdown or json")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also render the report as HTML to this file")

	return cmd
}
