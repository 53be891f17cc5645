package models

// DefaultOutputFile is the per-run output file name when the campaign
// descriptor does not name one.
const DefaultOutputFile = "output.csv"

// Campaign identifies an executed UQ run-set. It is loaded once at the start
// of post-processing and never mutated.
type Campaign struct {
	ID string `json:"id"`
	// WorkDir is the directory holding the campaign descriptor.
	WorkDir string `json:"work_dir"`
	// RunsDir holds one subdirectory per run, named by run id.
	RunsDir       string          `json:"runs_dir"`
	OutputFile    string          `json:"output_file"`
	OutputColumns []string        `json:"output_columns"`
	SchemePath    string          `json:"scheme"`
	Scheme        *SamplingScheme `json:"-"`
}

// HasColumn reports whether name is one of the declared output columns.
func (c *Campaign) HasColumn(name string) bool {
	for _, col := range c.OutputColumns {
		if col == name {
			return true
		}
	}
	return false
}
