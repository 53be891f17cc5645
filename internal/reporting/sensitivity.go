package reporting

import (
	"fmt"
	"strings"

	"github.com/vecma/uqpost/internal/analysis"
	"github.com/vecma/uqpost/internal/models"
)

// SensitivityRow is one rendered Sobol index.
type SensitivityRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ParameterEffect is the first- and total-order index of one parameter.
type ParameterEffect struct {
	Parameter string `json:"parameter"`
	First     string `json:"first_order"`
	Total     string `json:"total_order"`
}

// SensitivitySection holds the rows of one QoI, in the analyzer's order, and
// the per-parameter effects in parameter order.
type SensitivitySection struct {
	QoI     string            `json:"qoi"`
	Rows    []SensitivityRow  `json:"rows"`
	Effects []ParameterEffect `json:"effects"`
}

// SensitivityReport is the sensitivity table of one analysis.
type SensitivityReport struct {
	Sections []SensitivitySection `json:"sections"`
}

// FormatSensitivityTable labels every Sobol index of the requested QoIs with
// the names of the parameters in its subset. qois defaults to every QoI of the
// result and parameterNames to the result's parameters. Rows keep the order
// the analyzer produced.
func FormatSensitivityTable(result *models.AnalysisResult, qois, parameterNames []string) (*SensitivityReport, error) {
	if len(qois) == 0 {
		qois = result.QoIs
	}
	if len(parameterNames) == 0 {
		parameterNames = result.Parameters
	}

	report := &SensitivityReport{Sections: make([]SensitivitySection, 0, len(qois))}
	for _, qoi := range qois {
		indices, err := result.SobolsFor(qoi)
		if err != nil {
			return nil, err
		}

		section := SensitivitySection{QoI: qoi, Rows: make([]SensitivityRow, 0, len(indices))}
		for _, idx := range indices {
			names := make([]string, len(idx.Subset))
			for i, p := range idx.Subset {
				if p < 0 || p >= len(parameterNames) {
					return nil, fmt.Errorf("sensitivity index %s of %q refers to parameter %d, but only %d parameter names are known",
						idx.Key(), qoi, p, len(parameterNames))
				}
				names[i] = parameterNames[p]
			}
			section.Rows = append(section.Rows, SensitivityRow{
				Label: "S(" + strings.Join(names, ", ") + ")",
				Value: fmt.Sprintf("%.4f", idx.Value),
			})
		}

		first := analysis.FirstOrder(indices, len(parameterNames))
		total := analysis.TotalOrder(indices, len(parameterNames))
		for p, name := range parameterNames {
			section.Effects = append(section.Effects, ParameterEffect{
				Parameter: name,
				First:     fmt.Sprintf("%.4f", first[p]),
				Total:     fmt.Sprintf("%.4f", total[p]),
			})
		}
		report.Sections = append(report.Sections, section)
	}
	return report, nil
}

// Text renders the report as aligned plain text.
func (r *SensitivityReport) Text() string {
	width := len("Index")
	effectWidth := len("Parameter")
	for _, s := range r.Sections {
		for _, row := range s.Rows {
			width = max(width, displayWidth(row.Label))
		}
		for _, e := range s.Effects {
			effectWidth = max(effectWidth, displayWidth(e.Parameter))
		}
	}

	var b strings.Builder
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Sobol indices: %s\n", s.QoI))
		b.WriteString(fmt.Sprintf("  %s  Value\n", padRight("Index", width)))
		b.WriteString(fmt.Sprintf("  %s  ------\n", strings.Repeat("-", width)))
		for _, row := range s.Rows {
			b.WriteString(fmt.Sprintf("  %s  %s\n", padRight(row.Label, width), row.Value))
		}
		if len(s.Effects) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n  %s  First   Total\n", padRight("Parameter", effectWidth)))
		b.WriteString(fmt.Sprintf("  %s  ------  ------\n", strings.Repeat("-", effectWidth)))
		for _, e := range s.Effects {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n", padRight(e.Parameter, effectWidth), e.First, e.Total))
		}
	}
	return b.String()
}

// Markdown renders the report as one table per QoI.
func (r *SensitivityReport) Markdown() string {
	var b strings.Builder
	for _, s := range r.Sections {
		b.WriteString(fmt.Sprintf("### Sobol indices: %s\n\n", s.QoI))
		b.WriteString("| Index | Value |\n")
		b.WriteString("|---|---:|\n")
		for _, row := range s.Rows {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", row.Label, row.Value))
		}
		b.WriteString("\n")
		if len(s.Effects) == 0 {
			continue
		}
		b.WriteString("| Parameter | First order | Total order |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, e := range s.Effects {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", e.Parameter, e.First, e.Total))
		}
		b.WriteString("\n")
	}
	return b.String()
}
