package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/fetch"
)

func newFetchCommand() *cobra.Command {
	var machine string

	cmd := &cobra.Command{
		Use:   "fetch <campaign>",
		Short: "Fetch run outputs of a campaign from a remote machine",
		Long: `Fetch copies the run directories of a campaign from the machine that ran it
into the campaign's runs directory.

Machines are configured under "machines:" in .uqpost.yaml. The machine name
"localhost" means the outputs are already local.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if machine == fetch.LocalMachine {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to fetch: %s is local\n", c.ID) //nolint:errcheck
				return nil
			}
			if err := r.Fetch(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s from %s into %s\n", c.ID, machine, c.RunsDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&machine, "machine", "m", "", "Machine to fetch from (required)")
	_ = cmd.MarkFlagRequired("machine")

	return cmd
}
