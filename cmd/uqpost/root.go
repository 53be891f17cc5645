package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/projectconfig"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uqpost",
		Short: "uqpost - post-processing for uncertainty quantification campaigns",
		Long: `uqpost post-processes uncertainty quantification campaigns.

It collates the outputs of every run of a campaign, computes moments and
Sobol sensitivity indices from the sampling scheme, and propagates the input
uncertainty through a polynomial surrogate by Monte Carlo sampling.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("project", ".", "Directory to start the search for "+projectconfig.FileName)
	cmd.PersistentFlags().String("results", "", "Results directory (overrides paths.results)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newPropagateCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newConvergeCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
