package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/pipeline"
	"github.com/vecma/uqpost/internal/reporting"
)

func newConvergeCommand() *cobra.Command {
	var (
		qoi    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "converge --qoi <name> [campaign-id ...]",
		Short: "Show how the moments of a QoI change across campaigns",
		Long: `Converge loads stored analysis results, typically of the same model at
increasing polynomial order, and prints the mean and standard deviation of one
QoI for each, in the order given. With no campaign IDs, every stored result
is used in name order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids, err = p.store.List()
				if err != nil {
					return &pipeline.StageError{Stage: pipeline.StagePersistence, Err: err}
				}
				if len(ids) == 0 {
					return &pipeline.StageError{
						Stage: pipeline.StagePersistence,
						Err:   fmt.Errorf("%w: no results in %s", models.ErrResultNotFound, p.store.Dir()),
					}
				}
			}

			r := pipeline.NewRunner(pipeline.WithStore(p.store))
			results := make([]*models.AnalysisResult, 0, len(ids))
			for _, id := range ids {
				res, err := r.LoadResult(id)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			series, err := reporting.Convergence(results, qoi)
			if err != nil {
				return reportingErr(err)
			}

			w := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return reportingErr(enc.Encode(series))
			}
			_, err = fmt.Fprint(w, reporting.ConvergenceText(qoi, series))
			return reportingErr(err)
		},
	}

	cmd.Flags().StringVarP(&qoi, "qoi", "q", "", "Quantity of interest (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("qoi")

	return cmd
}
