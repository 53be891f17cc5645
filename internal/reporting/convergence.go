package reporting

import (
	"fmt"
	"strings"

	"github.com/vecma/uqpost/internal/models"
)

// ConvergencePoint is the moments of one QoI in one analysis of a sequence.
type ConvergencePoint struct {
	CampaignID string  `json:"campaign_id"`
	NumSamples int     `json:"num_samples"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
}

// Convergence returns the mean and standard deviation of qoi across results,
// in the order given.
func Convergence(results []*models.AnalysisResult, qoi string) ([]ConvergencePoint, error) {
	series := make([]ConvergencePoint, 0, len(results))
	for _, r := range results {
		m, err := r.MomentsFor(qoi)
		if err != nil {
			return nil, fmt.Errorf("campaign %q: %w", r.CampaignID, err)
		}
		series = append(series, ConvergencePoint{
			CampaignID: r.CampaignID,
			NumSamples: r.NumSamples,
			Mean:       m.Mean,
			Std:        m.Std,
		})
	}
	return series, nil
}

// ConvergenceText renders a series as a table with the change in mean and
// std from the previous row.
func ConvergenceText(qoi string, series []ConvergencePoint) string {
	width := len("Campaign")
	for _, p := range series {
		width = max(width, displayWidth(p.CampaignID))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Convergence: %s\n", qoi))
	b.WriteString(fmt.Sprintf("  %s  %10s  %14s  %14s  %12s  %12s\n",
		padRight("Campaign", width), "Samples", "Mean", "Std", "dMean", "dStd"))
	for i, p := range series {
		dMean, dStd := "-", "-"
		if i > 0 {
			dMean = fmt.Sprintf("%.3g", p.Mean-series[i-1].Mean)
			dStd = fmt.Sprintf("%.3g", p.Std-series[i-1].Std)
		}
		b.WriteString(fmt.Sprintf("  %s  %10s  %14.6g  %14.6g  %12s  %12s\n",
			padRight(p.CampaignID, width), FormatCount(p.NumSamples), p.Mean, p.Std, dMean, dStd))
	}
	return b.String()
}
