package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vecma/uqpost/internal/fetch"
	"github.com/vecma/uqpost/internal/pipeline"
	"github.com/vecma/uqpost/internal/projectconfig"
	"github.com/vecma/uqpost/internal/resultstore"
)

// project bundles what every command derives from .uqpost.yaml and the
// persistent flags.
type project struct {
	cfg   *projectconfig.ProjectConfig
	store *resultstore.Store
}

func loadProject(cmd *cobra.Command) (*project, error) {
	startDir, _ := cmd.Flags().GetString("project")
	cfg, err := projectconfig.Load(startDir)
	if err != nil {
		return nil, err
	}

	resultsDir := cfg.ResultsDir()
	if override, _ := cmd.Flags().GetString("results"); override != "" {
		resultsDir = override
	}
	return &project{cfg: cfg, store: resultstore.New(resultsDir)}, nil
}

// runner builds a pipeline runner that fetches from machine and persists to
// the project's store.
func (p *project) runner(machine string, opts ...pipeline.RunnerOption) (*pipeline.Runner, error) {
	all := []pipeline.RunnerOption{pipeline.WithStore(p.store)}
	if machine != "" && machine != fetch.LocalMachine {
		registry, err := fetch.New(p.cfg.Machines)
		if err != nil {
			return nil, fmt.Errorf("reading machines from %s: %w", projectconfig.FileName, err)
		}
		all = append(all, pipeline.WithFetcher(registry, machine))
	}
	return pipeline.NewRunner(append(all, opts...)...), nil
}
