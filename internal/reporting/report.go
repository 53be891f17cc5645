// Package reporting renders analysis and propagation results for terminals,
// markdown and HTML.
package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/statistics"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PropagationSummary describes the Monte Carlo distribution of one QoI.
type PropagationSummary struct {
	QoI       string                        `json:"qoi"`
	Seed      int64                         `json:"seed"`
	Stats     statistics.Summary            `json:"stats"`
	MeanCI    statistics.ConfidenceInterval `json:"mean_ci"`
	Bandwidth float64                       `json:"bandwidth,omitempty"`
}

// SummarizePropagation computes the summary statistics of dist and a
// bootstrap interval for its mean at the given confidence level.
func SummarizePropagation(dist *models.EmpiricalDistribution, density *statistics.Density, level float64) *PropagationSummary {
	s := &PropagationSummary{
		QoI:    dist.QoI,
		Seed:   dist.Seed,
		Stats:  statistics.Summarize(dist.Values),
		MeanCI: statistics.BootstrapMeanCI(dist.Values, level, dist.Seed),
	}
	if density != nil {
		s.Bandwidth = density.Bandwidth
	}
	return s
}

// Report gathers the rendered outcome of an analysis and, optionally, of a
// propagation.
type Report struct {
	Result      *models.AnalysisResult `json:"result"`
	Sensitivity *SensitivityReport     `json:"sensitivity"`
	Propagation *PropagationSummary    `json:"propagation,omitempty"`
}

// NewReport builds the report of result restricted to qois (all when empty).
func NewReport(result *models.AnalysisResult, qois []string) (*Report, error) {
	if len(qois) == 0 {
		qois = result.QoIs
	}
	for _, q := range qois {
		if _, err := result.MomentsFor(q); err != nil {
			return nil, err
		}
	}
	sens, err := FormatSensitivityTable(result, qois, result.Parameters)
	if err != nil {
		return nil, err
	}
	return &Report{Result: result, Sensitivity: sens}, nil
}

func (r *Report) qois() []string {
	out := make([]string, len(r.Sensitivity.Sections))
	for i, s := range r.Sensitivity.Sections {
		out[i] = s.QoI
	}
	return out
}

// Text renders the report for a terminal.
func (r *Report) Text() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Campaign %s ===\n\n", r.Result.CampaignID))
	b.WriteString(fmt.Sprintf("Parameters: %s\n", strings.Join(r.Result.Parameters, ", ")))
	b.WriteString(fmt.Sprintf("Samples:    %s\n\n", FormatCount(r.Result.NumSamples)))

	width := len("QoI")
	for _, q := range r.qois() {
		width = max(width, displayWidth(q))
	}
	b.WriteString("Moments:\n")
	b.WriteString(fmt.Sprintf("  %s  %14s  %14s\n", padRight("QoI", width), "Mean", "Std"))
	for _, q := range r.qois() {
		m := r.Result.Moments[q]
		b.WriteString(fmt.Sprintf("  %s  %14.6g  %14.6g\n", padRight(q, width), m.Mean, m.Std))
	}
	b.WriteString("\n")
	b.WriteString(r.Sensitivity.Text())

	if p := r.Propagation; p != nil {
		b.WriteString(fmt.Sprintf("\nMonte Carlo: %s (%s samples, seed %d)\n", p.QoI, FormatCount(p.Stats.N), p.Seed))
		b.WriteString(fmt.Sprintf("  Mean:   %.6g  [%.6g, %.6g] at %.0f%%\n", p.Stats.Mean, p.MeanCI.Lower, p.MeanCI.Upper, p.MeanCI.ConfidenceLevel*100))
		b.WriteString(fmt.Sprintf("  Std:    %.6g\n", p.Stats.Std))
		b.WriteString(fmt.Sprintf("  Range:  [%.6g, %.6g]\n", p.Stats.Min, p.Stats.Max))
		b.WriteString(fmt.Sprintf("  P05/P50/P95: %.6g / %.6g / %.6g\n", p.Stats.P05, p.Stats.Median, p.Stats.P95))
		if p.Bandwidth > 0 {
			b.WriteString(fmt.Sprintf("  KDE bandwidth: %.6g\n", p.Bandwidth))
		}
	}
	return b.String()
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Campaign %s\n\n", r.Result.CampaignID))
	b.WriteString(fmt.Sprintf("- Parameters: %s\n", strings.Join(r.Result.Parameters, ", ")))
	b.WriteString(fmt.Sprintf("- Samples: %s\n\n", FormatCount(r.Result.NumSamples)))

	b.WriteString("## Moments\n\n")
	b.WriteString("| QoI | Mean | Std |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, q := range r.qois() {
		m := r.Result.Moments[q]
		b.WriteString(fmt.Sprintf("| %s | %.6g | %.6g |\n", q, m.Mean, m.Std))
	}
	b.WriteString("\n## Sensitivity\n\n")
	b.WriteString(r.Sensitivity.Markdown())

	if p := r.Propagation; p != nil {
		b.WriteString(fmt.Sprintf("## Monte Carlo: %s\n\n", p.QoI))
		b.WriteString("| Statistic | Value |\n")
		b.WriteString("|---|---:|\n")
		b.WriteString(fmt.Sprintf("| Samples | %s |\n", FormatCount(p.Stats.N)))
		b.WriteString(fmt.Sprintf("| Seed | %d |\n", p.Seed))
		b.WriteString(fmt.Sprintf("| Mean | %.6g |\n", p.Stats.Mean))
		b.WriteString(fmt.Sprintf("| Mean %.0f%% CI | [%.6g, %.6g] |\n", p.MeanCI.ConfidenceLevel*100, p.MeanCI.Lower, p.MeanCI.Upper))
		b.WriteString(fmt.Sprintf("| Std | %.6g |\n", p.Stats.Std))
		b.WriteString(fmt.Sprintf("| Min | %.6g |\n", p.Stats.Min))
		b.WriteString(fmt.Sprintf("| Max | %.6g |\n", p.Stats.Max))
		b.WriteString(fmt.Sprintf("| P05 | %.6g |\n", p.Stats.P05))
		b.WriteString(fmt.Sprintf("| Median | %.6g |\n", p.Stats.Median))
		b.WriteString(fmt.Sprintf("| P95 | %.6g |\n", p.Stats.P95))
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report to an HTML fragment.
func (r *Report) HTML() (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}
