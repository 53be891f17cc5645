// Package campaign loads campaign descriptors and their sampling schemes
// from disk.
package campaign

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/validation"
	"gopkg.in/yaml.v3"
)

// DescriptorFile is the conventional campaign descriptor name inside a
// campaign directory.
const DescriptorFile = "campaign.yaml"

// DefaultRunsDir is used when the descriptor omits runs_dir.
const DefaultRunsDir = "runs"

type descriptorDoc struct {
	ID            string   `yaml:"id"`
	RunsDir       string   `yaml:"runs_dir"`
	OutputFile    string   `yaml:"output_file"`
	OutputColumns []string `yaml:"output_columns"`
	Scheme        string   `yaml:"scheme"`
}

type schemeDoc struct {
	Parameters []struct {
		Name         string `yaml:"name"`
		Distribution struct {
			Kind   string         `yaml:"kind"`
			Params map[string]any `yaml:"params"`
		} `yaml:"distribution"`
		Rule struct {
			Nodes   []float64 `yaml:"nodes"`
			Weights []float64 `yaml:"weights"`
		} `yaml:"rule"`
	} `yaml:"parameters"`
	Nodes []struct {
		RunID  string    `yaml:"run_id"`
		Index  []int     `yaml:"index"`
		Point  []float64 `yaml:"point"`
		Weight float64   `yaml:"weight"`
	} `yaml:"nodes"`
}

// Load reads a campaign descriptor and the sampling scheme it references.
// path may name the descriptor file itself or the campaign directory holding
// campaign.yaml. Relative paths inside the descriptor resolve against its
// directory.
func Load(path string) (*models.Campaign, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("campaign: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, DescriptorFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("campaign: reading descriptor: %w", err)
	}
	if errs := validation.ValidateCampaignBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", models.ErrInvalidCampaign, path, strings.Join(errs, "; "))
	}

	var doc descriptorDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("campaign: parsing %s: %w", path, err)
	}

	workDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("campaign: resolving %q: %w", path, err)
	}

	c := &models.Campaign{
		ID:            doc.ID,
		WorkDir:       workDir,
		RunsDir:       resolve(workDir, doc.RunsDir, DefaultRunsDir),
		OutputFile:    doc.OutputFile,
		OutputColumns: doc.OutputColumns,
		SchemePath:    resolve(workDir, doc.Scheme, ""),
	}
	if c.OutputFile == "" {
		c.OutputFile = models.DefaultOutputFile
	}

	scheme, err := LoadScheme(c.SchemePath)
	if err != nil {
		return nil, err
	}
	c.Scheme = scheme

	slog.Debug("Loaded campaign",
		"id", c.ID,
		"parameters", scheme.Dim(),
		"nodes", len(scheme.Nodes),
		"columns", len(c.OutputColumns))
	return c, nil
}

// LoadScheme reads and normalizes a sampling-scheme file.
func LoadScheme(path string) (*models.SamplingScheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("campaign: reading scheme: %w", err)
	}
	return ParseScheme(data, path)
}

// ParseScheme decodes scheme YAML. name only labels error messages.
func ParseScheme(data []byte, name string) (*models.SamplingScheme, error) {
	if errs := validation.ValidateSchemeBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", models.ErrInvalidCampaign, name, strings.Join(errs, "; "))
	}

	var doc schemeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("campaign: parsing %s: %w", name, err)
	}

	s := &models.SamplingScheme{
		Parameters: make([]models.Parameter, 0, len(doc.Parameters)),
		Nodes:      make([]models.Node, 0, len(doc.Nodes)),
	}
	for _, p := range doc.Parameters {
		m, err := models.NewMarginal(models.DistributionKind(p.Distribution.Kind), p.Distribution.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: parameter %q: %v", models.ErrInvalidCampaign, name, p.Name, err)
		}
		s.Parameters = append(s.Parameters, models.Parameter{
			Name:     p.Name,
			Marginal: m,
			Rule:     models.Rule{Nodes: p.Rule.Nodes, Weights: p.Rule.Weights},
		})
	}
	for _, n := range doc.Nodes {
		s.Nodes = append(s.Nodes, models.Node{
			RunID:  n.RunID,
			Index:  n.Index,
			Point:  n.Point,
			Weight: n.Weight,
		})
	}

	if err := s.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func resolve(base, p, fallback string) string {
	if p == "" {
		p = fallback
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
