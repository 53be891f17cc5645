package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/dataset"
	"github.com/vecma/uqpost/internal/pipeline"
	"github.com/vecma/uqpost/internal/propagation"
	"github.com/vecma/uqpost/internal/reporting"
	"github.com/vecma/uqpost/internal/statistics"
)

type propagateOptions struct {
	machine          string
	qoi              string
	samples          int
	seed             int64
	workers          int
	densityPoints    int
	bandwidthDivisor float64
	plotCSV          string
	noPlot           bool
	format           string
}

func newPropagateCommand() *cobra.Command {
	var o propagateOptions

	cmd := &cobra.Command{
		Use:   "propagate <campaign>",
		Short: "Propagate input uncertainty through the surrogate by Monte Carlo",
		Long: `Propagate analyzes a campaign, draws Monte Carlo samples from the input
marginals, evaluates the surrogate of one QoI at each sample, and estimates
the density of the resulting distribution.

Unset flags fall back to the "propagation:" and "density:" sections of
.uqpost.yaml. A negative --seed draws a different sequence on every run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return propagateCommandE(cmd, args[0], &o)
		},
	}

	cmd.Flags().StringVarP(&o.machine, "machine", "m", "", "Fetch run outputs from this machine first")
	cmd.Flags().StringVarP(&o.qoi, "qoi", "q", "", "Quantity of interest to propagate (default: first output column)")
	cmd.Flags().IntVarP(&o.samples, "samples", "n", 0, "Number of Monte Carlo samples")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "Random seed (negative for non-deterministic)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Concurrent surrogate evaluators (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&o.densityPoints, "density-points", 0, "Number of density evaluation points")
	cmd.Flags().Float64Var(&o.bandwidthDivisor, "bandwidth-divisor", 0, "KDE bandwidth is the sample range divided by this")
	cmd.Flags().StringVar(&o.plotCSV, "plot-csv", "", "Write domain,density pairs to this CSV file")
	cmd.Flags().BoolVar(&o.noPlot, "no-plot", false, "Do not draw the density plot")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatText, "Output format: text, markdown or json")

	return cmd
}

func propagateCommandE(cmd *cobra.Command, campaignPath string, o *propagateOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	cfg := p.cfg
	samples := cfg.Propagation.Samples
	if cmd.Flags().Changed("samples") {
		samples = o.samples
	}
	seed := cfg.SeedValue()
	if cmd.Flags().Changed("seed") {
		seed = o.seed
	}
	workers := cfg.Propagation.Workers
	if cmd.Flags().Changed("workers") {
		workers = o.workers
	}
	points := cfg.Propagation.DensityPoints
	if cmd.Flags().Changed("density-points") {
		points = o.densityPoints
	}
	divisor := cfg.Density.BandwidthDivisor
	if cmd.Flags().Changed("bandwidth-divisor") {
		divisor = o.bandwidthDivisor
	}

	r, err := p.runner(o.machine, pipeline.WithDensity(statistics.DensityOptions{BandwidthDivisor: divisor}, points))
	if err != nil {
		return err
	}
	c, err := r.LoadCampaign(campaignPath)
	if err != nil {
		return err
	}

	qoi := o.qoi
	if qoi == "" {
		qoi = c.OutputColumns[0]
	}

	out, err := r.Propagate(cmd.Context(), c, qoi, samples, propagation.Options{Seed: seed, Workers: workers})
	if err != nil {
		return err
	}

	if o.plotCSV != "" {
		if err := dataset.WriteColumns(o.plotCSV, []string{qoi, "density"}, out.Density.Domain, out.Density.Values); err != nil {
			return reportingErr(err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote density to %s\n", o.plotCSV) //nolint:errcheck
	}

	report, err := reporting.NewReport(out.Analysis.Result, nil)
	if err != nil {
		return reportingErr(err)
	}
	report.Propagation = reporting.SummarizePropagation(out.Distribution, out.Density, cfg.Propagation.ConfidenceLevel)

	w := cmd.OutOrStdout()
	if err := writeReport(w, report, o.format); err != nil {
		return reportingErr(err)
	}
	if o.noPlot || o.format != formatText {
		return nil
	}
	return reportingErr(plot(w, out))
}

func plot(w io.Writer, out *pipeline.PropagationOutcome) error {
	width := reporting.DefaultWidth
	if f, ok := w.(*os.File); ok {
		width = reporting.TerminalWidth(f)
	}
	if _, err := fmt.Fprintf(w, "\nDensity of %s (| marks code samples)\n", out.Distribution.QoI); err != nil {
		return err
	}
	return reporting.PlotDensity(w, out.Density.Domain, out.Density.Values, out.Distribution.CodeSamples, width, reporting.DefaultPlotHeight)
}
