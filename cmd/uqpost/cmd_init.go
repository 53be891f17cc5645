package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/projectconfig"
	"github.com/vecma/uqpost/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .uqpost.yaml project configuration",
		Long: `Init writes a .uqpost.yaml with the default results directory,
propagation and density settings.

Use --interactive to run a guided wizard that also registers a remote machine
to fetch run outputs from.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initCommandE(cmd, dir, interactive, force)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the guided configuration wizard")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+projectconfig.FileName)

	return cmd
}

func initCommandE(cmd *cobra.Command, dir string, interactive, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := projectconfig.New()
	if interactive {
		answers, err := wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), wizard.DefaultAnswers(cfg))
		if err != nil {
			return err
		}
		if err := answers.Apply(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Write(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path) //nolint:errcheck
	return nil
}
