// Package dataset reads and writes the CSV files exchanged with simulation runs.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vecma/uqpost/internal/models"
)

// LoadRunOutput parses a run-output file: a header row equal to columns,
// followed by exactly one row of numeric values.
func LoadRunOutput(path string, columns []string) (map[string]float64, error) {
	headers, records, err := readAll(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", models.ErrMissingRunOutput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedOutput, err)
	}

	if len(headers) != len(columns) {
		return nil, fmt.Errorf("%w: %s has %d columns, expected %d (%s)",
			models.ErrMalformedOutput, path, len(headers), len(columns), strings.Join(columns, ", "))
	}
	for i, h := range headers {
		if strings.TrimSpace(h) != columns[i] {
			return nil, fmt.Errorf("%w: %s column %d is %q, expected %q",
				models.ErrMalformedOutput, path, i+1, h, columns[i])
		}
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: %s has %d data rows, expected 1", models.ErrMalformedOutput, path, len(records))
	}

	values := make(map[string]float64, len(columns))
	for i, cell := range records[0] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s column %q: %q is not numeric", models.ErrMalformedOutput, path, columns[i], cell)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s column %q: %q is not finite", models.ErrMalformedOutput, path, columns[i], cell)
		}
		values[columns[i]] = v
	}
	return values, nil
}

func readAll(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
	}
	return headers, records[1:], nil
}

// WriteTable writes a collated table as CSV: a run_id column followed by the
// table's columns, one row per run in run-id order.
func WriteTable(path string, table *models.CollatedTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"run_id"}, table.Columns...)); err != nil {
		return fmt.Errorf("csv: write %s: %w", path, err)
	}
	for _, id := range table.RunIDs() {
		rec := table.Records[id]
		row := make([]string, 0, len(table.Columns)+1)
		row = append(row, id)
		for _, c := range table.Columns {
			row = append(row, strconv.FormatFloat(rec.Values[c], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}
	return f.Close()
}

// WriteColumns writes equal-length float columns under the given header.
func WriteColumns(path string, header []string, columns ...[]float64) error {
	if len(header) != len(columns) {
		return fmt.Errorf("csv: %d header names for %d columns", len(header), len(columns))
	}
	rows := 0
	for i, c := range columns {
		if i == 0 {
			rows = len(c)
		} else if len(c) != rows {
			return fmt.Errorf("csv: column %q has %d values, want %d", header[i], len(c), rows)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write %s: %w", path, err)
	}
	row := make([]string, len(columns))
	for r := 0; r < rows; r++ {
		for i, c := range columns {
			row[i] = strconv.FormatFloat(c[r], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}
	return f.Close()
}
