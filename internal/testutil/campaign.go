package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/vecma/uqpost/internal/models"
	"gopkg.in/yaml.v3"
)

// ClenshawCurtis3 is the three-point Clenshaw-Curtis rule for Uniform(0, 1).
func ClenshawCurtis3() models.Rule {
	return models.Rule{
		Nodes:   []float64{0, 0.5, 1},
		Weights: []float64{1.0 / 6, 2.0 / 3, 1.0 / 6},
	}
}

// GaussLegendre2 is the two-point Gauss-Legendre rule for Uniform(0, 1).
func GaussLegendre2() models.Rule {
	d := 0.5 / 1.7320508075688772
	return models.Rule{
		Nodes:   []float64{0.5 - d, 0.5 + d},
		Weights: []float64{0.5, 0.5},
	}
}

// GridFixture describes a campaign on a full tensor grid whose run outputs
// come from an analytic response.
type GridFixture struct {
	ID         string
	Parameters []models.Parameter
	Columns    []string
	// Response returns one value per column at point x.
	Response func(x []float64) []float64
	// Skip lists flat grid indices whose output file is not written.
	Skip map[int]bool
}

// Scheme builds the normalized sampling scheme of the fixture. Run ids are
// "Run_<flat index + 1>".
func (f GridFixture) Scheme(t testing.TB) *models.SamplingScheme {
	t.Helper()
	s := &models.SamplingScheme{Parameters: f.Parameters}
	for flat, idx := range f.indices() {
		s.Nodes = append(s.Nodes, models.Node{RunID: RunID(flat), Index: idx})
	}
	if err := s.Normalize(); err != nil {
		t.Fatalf("fixture scheme: %v", err)
	}
	return s
}

// Table builds the collated table the fixture's runs would produce.
func (f GridFixture) Table(t testing.TB) *models.CollatedTable {
	t.Helper()
	tbl := models.NewCollatedTable(f.Columns)
	for _, n := range f.Scheme(t).Nodes {
		vals := f.Response(n.Point)
		rec := models.RunOutputRecord{RunID: n.RunID, Values: make(map[string]float64, len(f.Columns))}
		for i, c := range f.Columns {
			rec.Values[c] = vals[i]
		}
		tbl.Records[n.RunID] = rec
	}
	return tbl
}

// RunID names the run at a flat grid index.
func RunID(flat int) string { return fmt.Sprintf("Run_%d", flat+1) }

// WriteCampaign lays the fixture out under dir as campaign.yaml, scheme.yaml
// and runs/<run id>/output.csv, and returns the descriptor path.
func WriteCampaign(t testing.TB, dir string, f GridFixture) string {
	t.Helper()

	type distribution struct {
		Kind   string             `yaml:"kind"`
		Params map[string]float64 `yaml:"params"`
	}
	type parameter struct {
		Name         string       `yaml:"name"`
		Distribution distribution `yaml:"distribution"`
		Rule         models.Rule  `yaml:"rule"`
	}
	type node struct {
		RunID string `yaml:"run_id"`
		Index []int  `yaml:"index,flow"`
	}
	var doc struct {
		Parameters []parameter `yaml:"parameters"`
		Nodes      []node      `yaml:"nodes"`
	}
	for _, p := range f.Parameters {
		d := distribution{Kind: string(p.Marginal.Kind)}
		if p.Marginal.Kind == models.DistributionNormal {
			d.Params = map[string]float64{"mean": p.Marginal.Mean, "std_dev": p.Marginal.StdDev}
		} else {
			d.Params = map[string]float64{"lower": p.Marginal.Lower, "upper": p.Marginal.Upper}
		}
		doc.Parameters = append(doc.Parameters, parameter{Name: p.Name, Distribution: d, Rule: p.Rule})
	}
	scheme := f.Scheme(t)
	for flat, n := range scheme.Nodes {
		doc.Nodes = append(doc.Nodes, node{RunID: n.RunID, Index: n.Index})
		if f.Skip[flat] {
			continue
		}
		runDir := filepath.Join(dir, "runs", n.RunID)
		mustWrite(t, filepath.Join(runDir, models.DefaultOutputFile), OutputCSV(f.Columns, f.Response(n.Point)))
	}

	schemeYAML, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal scheme: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "scheme.yaml"), string(schemeYAML))

	id := f.ID
	if id == "" {
		id = "fixture"
	}
	descriptor := fmt.Sprintf("id: %s\nruns_dir: runs\noutput_columns: [%s]\nscheme: scheme.yaml\n",
		id, strings.Join(f.Columns, ", "))
	path := filepath.Join(dir, "campaign.yaml")
	mustWrite(t, path, descriptor)
	return path
}

// OutputCSV renders a run-output file: a header row and one data row.
func OutputCSV(columns []string, values []float64) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(columns, ",") + "\n" + strings.Join(cells, ",") + "\n"
}

func (f GridFixture) indices() [][]int {
	out := [][]int{{}}
	for _, p := range f.Parameters {
		var next [][]int
		for _, prefix := range out {
			for i := 0; i < p.Rule.Len(); i++ {
				idx := append(append([]int{}, prefix...), i)
				next = append(next, idx)
			}
		}
		out = next
	}
	return out
}

func mustWrite(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
