// Package collate assembles per-run output files into a single table keyed
// by run id.
package collate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vecma/uqpost/internal/dataset"
	"github.com/vecma/uqpost/internal/models"
)

// Collate reads the output file of every run the campaign's scheme references.
// It is all-or-nothing: on any failure no table is returned.
func Collate(c *models.Campaign) (*models.CollatedTable, error) {
	if c == nil || c.Scheme == nil {
		return nil, fmt.Errorf("%w: campaign has no sampling scheme", models.ErrInvalidCampaign)
	}
	if len(c.OutputColumns) == 0 {
		return nil, fmt.Errorf("%w: campaign %q declares no output columns", models.ErrInvalidCampaign, c.ID)
	}

	outputFile := c.OutputFile
	if outputFile == "" {
		outputFile = models.DefaultOutputFile
	}

	table := models.NewCollatedTable(c.OutputColumns)
	for _, node := range c.Scheme.Nodes {
		if !filepath.IsLocal(node.RunID) || filepath.Clean(node.RunID) == "." {
			return nil, fmt.Errorf("%w: run id %q is not a directory name under %s", models.ErrInvalidCampaign, node.RunID, c.RunsDir)
		}
		runDir := filepath.Join(c.RunsDir, node.RunID)
		if _, err := os.Stat(runDir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: run %q has no directory at %s", models.ErrMissingRunOutput, node.RunID, runDir)
			}
			return nil, fmt.Errorf("checking run %q: %w", node.RunID, err)
		}

		path := filepath.Join(runDir, outputFile)
		values, err := dataset.LoadRunOutput(path, c.OutputColumns)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", node.RunID, err)
		}

		table.Records[node.RunID] = models.RunOutputRecord{RunID: node.RunID, Values: values}
		slog.Debug("Collated run", "run", node.RunID, "path", path)
	}

	slog.Info("Collated campaign outputs", "campaign", c.ID, "runs", table.Len(), "columns", len(table.Columns))
	return table, nil
}
