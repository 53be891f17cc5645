package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/dataset"
	"github.com/vecma/uqpost/internal/reporting"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		machine     string
		exportTable string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "analyze <campaign>",
		Short: "Collate run outputs and compute moments and Sobol indices",
		Long: `Analyze collates the output file of every run of a campaign, computes
the mean, standard deviation and Sobol indices of each output column, and
saves the result to the results directory.

<campaign> is a campaign.yaml file or the directory holding one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			r, err := p.runner(machine)
			if err != nil {
				return err
			}
			c, err := r.LoadCampaign(args[0])
			if err != nil {
				return err
			}
			out, err := r.Analyze(cmd.Context(), c)
			if err != nil {
				return err
			}

			if exportTable != "" {
				if err := dataset.WriteTable(exportTable, out.Table); err != nil {
					return reportingErr(err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote collated table to %s\n", exportTable) //nolint:errcheck
			}

			report, err := reporting.NewReport(out.Result, nil)
			if err != nil {
				return reportingErr(err)
			}
			return reportingErr(writeReport(cmd.OutOrStdout(), report, format))
		},
	}

	cmd.Flags().StringVarP(&machine, "machine", "m", "", "Fetch run outputs from this machine first")
	cmd.Flags().StringVar(&exportTable, "export-table", "", "Also write the collated table as CSV to this path")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, markdown or json")

	return cmd
}
