package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCampaignYAML = `id: ocean_2D
runs_dir: runs
output_columns: [E_mean, Z_mean, E_std, Z_std]
scheme: scheme.yaml
`

const validSchemeYAML = `parameters:
  - name: decay_time_nu
    distribution:
      kind: uniform
      params: {lower: 1, upper: 5}
    rule:
      nodes: [1, 3, 5]
      weights: [0.1666, 0.6667, 0.1666]
nodes:
  - run_id: Run_1
    index: [0]
  - run_id: Run_2
    index: [1]
    weight: 0.6667
  - run_id: Run_3
    index: [2]
    point: [5]
`

func TestValidateCampaignBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateCampaignBytes([]byte(validCampaignYAML)))
}

func TestValidateCampaignBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantLoc string
	}{
		{"missing id", "output_columns: [a]\nscheme: s.yaml\n", "/"},
		{"empty columns", "id: c\noutput_columns: []\nscheme: s.yaml\n", "/output_columns"},
		{"duplicate columns", "id: c\noutput_columns: [a, a]\nscheme: s.yaml\n", "/output_columns"},
		{"bad id", "id: \"a/b\"\noutput_columns: [a]\nscheme: s.yaml\n", "/id"},
		{"unknown key", "id: c\noutput_columns: [a]\nscheme: s.yaml\nmachine: eagle\n", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCampaignBytes([]byte(tt.yaml))
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.HasPrefix(e, tt.wantLoc) {
					found = true
				}
			}
			assert.True(t, found, "expected an error at %s, got %v", tt.wantLoc, errs)
		})
	}
}

func TestValidateSchemeBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateSchemeBytes([]byte(validSchemeYAML)))
}

func TestValidateSchemeBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown distribution", strings.Replace(validSchemeYAML, "kind: uniform", "kind: beta", 1)},
		{"negative index", strings.Replace(validSchemeYAML, "index: [0]", "index: [-1]", 1)},
		{"missing run id", strings.Replace(validSchemeYAML, "run_id: Run_1", "id: Run_1", 1)},
		{"run id with parent dir", strings.Replace(validSchemeYAML, "run_id: Run_1", "run_id: ../Run_1", 1)},
		{"run id with separator", strings.Replace(validSchemeYAML, "run_id: Run_1", "run_id: runs/Run_1", 1)},
		{"dot run id", strings.Replace(validSchemeYAML, "run_id: Run_1", `run_id: "."`, 1)},
		{"no nodes", "parameters: []\nnodes: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, ValidateSchemeBytes([]byte(tt.yaml)))
		})
	}
}

func TestValidateBytes_Malformed(t *testing.T) {
	errs := ValidateCampaignBytes([]byte("id: [unclosed"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")

	errs = ValidateSchemeBytes([]byte(""))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "empty")
}
