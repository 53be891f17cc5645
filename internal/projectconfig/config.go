// Package projectconfig provides the ProjectConfig struct and loader for
// .uqpost.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file.
const FileName = ".uqpost.yaml"

// maxWalkUp bounds how many parent directories Load searches.
const maxWalkUp = 10

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultResultsDir = "results/"

	DefaultSamples         = 50000
	DefaultSeed            = 42
	DefaultWorkers         = 0
	DefaultDensityPoints   = 100
	DefaultConfidenceLevel = 0.95

	DefaultBandwidthDivisor = 30.0
)

// PathsConfig holds directory paths.
type PathsConfig struct {
	Results string `yaml:"results,omitempty"`
}

// PropagationConfig holds Monte Carlo settings.
type PropagationConfig struct {
	Samples int `yaml:"samples,omitempty"`
	// Seed is a pointer so an explicit 0 survives the merge. Negative seeds
	// are non-deterministic.
	Seed            *int64  `yaml:"seed,omitempty"`
	Workers         int     `yaml:"workers,omitempty"`
	DensityPoints   int     `yaml:"density_points,omitempty"`
	ConfidenceLevel float64 `yaml:"confidence_level,omitempty"`
}

// DensityConfig holds kernel density estimate settings.
type DensityConfig struct {
	BandwidthDivisor float64 `yaml:"bandwidth_divisor,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .uqpost.yaml.
type ProjectConfig struct {
	Paths       PathsConfig       `yaml:"paths,omitempty"`
	Propagation PropagationConfig `yaml:"propagation,omitempty"`
	Density     DensityConfig     `yaml:"density,omitempty"`

	// Machines maps a machine name to its untyped settings. The fetch
	// package decodes each entry according to its kind.
	Machines map[string]map[string]any `yaml:"machines,omitempty"`

	// Dir is the directory the file was found in, empty for defaults.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results: DefaultResultsDir,
		},
		Propagation: PropagationConfig{
			Samples:         DefaultSamples,
			Seed:            int64Ptr(DefaultSeed),
			Workers:         DefaultWorkers,
			DensityPoints:   DefaultDensityPoints,
			ConfidenceLevel: DefaultConfidenceLevel,
		},
		Density: DensityConfig{
			BandwidthDivisor: DefaultBandwidthDivisor,
		},
		Machines: map[string]map[string]any{},
	}
}

// Load finds .uqpost.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ResultsDir returns the results directory, resolved against the directory
// holding the config file when it is relative.
func (c *ProjectConfig) ResultsDir() string {
	if filepath.IsAbs(c.Paths.Results) || c.Dir == "" {
		return c.Paths.Results
	}
	return filepath.Join(c.Dir, c.Paths.Results)
}

// SeedValue returns the configured seed, or DefaultSeed when unset.
func (c *ProjectConfig) SeedValue() int64 {
	if c.Propagation.Seed == nil {
		return DefaultSeed
	}
	return *c.Propagation.Seed
}

// Write marshals the config to path.
func (c *ProjectConfig) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// findConfigFile walks up from dir looking for .uqpost.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalkUp; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	if src.Propagation.Samples != 0 {
		dst.Propagation.Samples = src.Propagation.Samples
	}
	if src.Propagation.Seed != nil {
		dst.Propagation.Seed = src.Propagation.Seed
	}
	if src.Propagation.Workers != 0 {
		dst.Propagation.Workers = src.Propagation.Workers
	}
	if src.Propagation.DensityPoints != 0 {
		dst.Propagation.DensityPoints = src.Propagation.DensityPoints
	}
	if src.Propagation.ConfidenceLevel != 0 {
		dst.Propagation.ConfidenceLevel = src.Propagation.ConfidenceLevel
	}

	if src.Density.BandwidthDivisor != 0 {
		dst.Density.BandwidthDivisor = src.Density.BandwidthDivisor
	}

	for name, m := range src.Machines {
		dst.Machines[name] = m
	}
}

func int64Ptr(v int64) *int64 { return &v }
