package models

import "sort"

// RunOutputRecord is the output row of one completed run.
type RunOutputRecord struct {
	RunID  string             `json:"run_id"`
	Values map[string]float64 `json:"values"`
}

// CollatedTable holds one record per run, keyed by run id.
type CollatedTable struct {
	Columns []string                   `json:"columns"`
	Records map[string]RunOutputRecord `json:"records"`
}

// NewCollatedTable returns an empty table with the given columns.
func NewCollatedTable(columns []string) *CollatedTable {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &CollatedTable{
		Columns: cols,
		Records: make(map[string]RunOutputRecord),
	}
}

// Len returns the number of records.
func (t *CollatedTable) Len() int { return len(t.Records) }

// Lookup returns the record for runID.
func (t *CollatedTable) Lookup(runID string) (RunOutputRecord, bool) {
	r, ok := t.Records[runID]
	return r, ok
}

// HasColumn reports whether the table carries the named column.
func (t *CollatedTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RunIDs returns the run ids in lexical order.
func (t *CollatedTable) RunIDs() []string {
	ids := make([]string, 0, len(t.Records))
	for id := range t.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
