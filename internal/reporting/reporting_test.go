package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/statistics"
)

func analysisResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		CampaignID: "ocean_2D",
		Parameters: []string{"decay_time_nu", "decay_time_mu"},
		QoIs:       []string{"E_mean", "Z_mean"},
		Moments: map[string]models.Moments{
			"E_mean": {Mean: 1.5, Std: 0.6455, Variance: 0.41667},
			"Z_mean": {Mean: -3, Std: 2, Variance: 4},
		},
		Sobols: map[string][]models.SobolIndex{
			// Deliberately not sorted by value.
			"E_mean": {
				{Subset: []int{0}, Value: 0.2},
				{Subset: []int{1}, Value: 0.8},
				{Subset: []int{0, 1}, Value: 0},
			},
			"Z_mean": {
				{Subset: []int{0}, Value: 0.42857},
				{Subset: []int{1}, Value: 0.42857},
				{Subset: []int{0, 1}, Value: 0.14286},
			},
		},
		NumSamples: 12345,
	}
}

func TestFormatSensitivityTable(t *testing.T) {
	report, err := FormatSensitivityTable(analysisResult(), []string{"E_mean"}, nil)
	require.NoError(t, err)
	require.Len(t, report.Sections, 1)

	assert.Equal(t, "E_mean", report.Sections[0].QoI)
	assert.Equal(t, []SensitivityRow{
		{Label: "S(decay_time_nu)", Value: "0.2000"},
		{Label: "S(decay_time_mu)", Value: "0.8000"},
		{Label: "S(decay_time_nu, decay_time_mu)", Value: "0.0000"},
	}, report.Sections[0].Rows)
}

func TestFormatSensitivityTable_ParameterEffects(t *testing.T) {
	report, err := FormatSensitivityTable(analysisResult(), []string{"Z_mean"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []ParameterEffect{
		{Parameter: "decay_time_nu", First: "0.4286", Total: "0.5714"},
		{Parameter: "decay_time_mu", First: "0.4286", Total: "0.5714"},
	}, report.Sections[0].Effects)
}

func TestFormatSensitivityTable_DefaultsToAllQoIs(t *testing.T) {
	report, err := FormatSensitivityTable(analysisResult(), nil, []string{"nu", "mu"})
	require.NoError(t, err)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, "Z_mean", report.Sections[1].QoI)
	assert.Equal(t, "S(nu, mu)", report.Sections[1].Rows[2].Label)
	assert.Equal(t, "0.1429", report.Sections[1].Rows[2].Value)
}

func TestFormatSensitivityTable_PreservesAnalyzerOrder(t *testing.T) {
	r := analysisResult()
	r.Sobols["E_mean"] = []models.SobolIndex{
		{Subset: []int{0, 1}, Value: 0.5},
		{Subset: []int{1}, Value: 0.1},
		{Subset: []int{0}, Value: 0.4},
	}
	report, err := FormatSensitivityTable(r, []string{"E_mean"}, nil)
	require.NoError(t, err)

	var labels []string
	for _, row := range report.Sections[0].Rows {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"S(decay_time_nu, decay_time_mu)", "S(decay_time_mu)", "S(decay_time_nu)"}, labels)
}

func TestFormatSensitivityTable_Errors(t *testing.T) {
	_, err := FormatSensitivityTable(analysisResult(), []string{"T_max"}, nil)
	require.ErrorIs(t, err, models.ErrUnknownQoI)

	_, err = FormatSensitivityTable(analysisResult(), []string{"E_mean"}, []string{"only_one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 1")
}

func TestSensitivityReport_TextAlignsColumns(t *testing.T) {
	report, err := FormatSensitivityTable(analysisResult(), []string{"E_mean"}, []string{"ν", "μ"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(report.Text(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Sobol indices: E_mean", lines[0])
	assert.Equal(t, "  S(ν)     0.2000", lines[3])
	assert.Equal(t, "  S(ν, μ)  0.0000", lines[5])
	assert.Equal(t, "  Parameter  First   Total", lines[7])
	assert.Equal(t, "  μ          0.8000  0.8000", lines[10])
}

func TestSensitivityReport_Markdown(t *testing.T) {
	report, err := FormatSensitivityTable(analysisResult(), []string{"E_mean"}, nil)
	require.NoError(t, err)

	md := report.Markdown()
	assert.Contains(t, md, "### Sobol indices: E_mean")
	assert.Contains(t, md, "| S(decay_time_mu) | 0.8000 |")
	assert.Contains(t, md, "| decay_time_nu | 0.2000 | 0.2000 |")
}

func TestReport_TextAndHTML(t *testing.T) {
	result := analysisResult()
	report, err := NewReport(result, nil)
	require.NoError(t, err)

	dist := &models.EmpiricalDistribution{QoI: "E_mean", Values: []float64{1, 2, 3, 4, 5}, Seed: 42}
	density, err := statistics.EstimateDensity(dist.Values, 10, statistics.DensityOptions{})
	require.NoError(t, err)
	report.Propagation = SummarizePropagation(dist, density, 0.95)

	text := report.Text()
	assert.Contains(t, text, "=== Campaign ocean_2D ===")
	assert.Contains(t, text, "Samples:    12,345")
	assert.Contains(t, text, "Monte Carlo: E_mean (5 samples, seed 42)")
	assert.Contains(t, text, "S(decay_time_nu, decay_time_mu)")

	html, err := report.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Campaign ocean_2D</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>S(decay_time_mu)</td>")
}

func TestNewReport_UnknownQoI(t *testing.T) {
	_, err := NewReport(analysisResult(), []string{"nope"})
	require.ErrorIs(t, err, models.ErrUnknownQoI)
}

func TestSummarizePropagation(t *testing.T) {
	dist := &models.EmpiricalDistribution{QoI: "q", Values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, Seed: 3}
	s := SummarizePropagation(dist, nil, 0.9)
	assert.Equal(t, 8, s.Stats.N)
	assert.InDelta(t, 5.0, s.Stats.Mean, 1e-12)
	assert.InDelta(t, 0.9, s.MeanCI.ConfidenceLevel, 1e-12)
	assert.Zero(t, s.Bandwidth)
}

func TestConvergence(t *testing.T) {
	coarse := analysisResult()
	coarse.CampaignID = "level_1"
	coarse.NumSamples = 9
	fine := analysisResult()
	fine.CampaignID = "level_2"
	fine.NumSamples = 25
	fine.Moments["E_mean"] = models.Moments{Mean: 1.55, Std: 0.65}

	series, err := Convergence([]*models.AnalysisResult{coarse, fine}, "E_mean")
	require.NoError(t, err)
	assert.Equal(t, []ConvergencePoint{
		{CampaignID: "level_1", NumSamples: 9, Mean: 1.5, Std: 0.6455},
		{CampaignID: "level_2", NumSamples: 25, Mean: 1.55, Std: 0.65},
	}, series)

	text := ConvergenceText("E_mean", series)
	assert.Contains(t, text, "Convergence: E_mean")
	assert.Contains(t, text, "level_2")

	_, err = Convergence([]*models.AnalysisResult{coarse}, "T_max")
	require.ErrorIs(t, err, models.ErrUnknownQoI)
}

func TestPlotDensity(t *testing.T) {
	domain := []float64{0, 1, 2, 3, 4}
	density := []float64{0.05, 0.2, 0.5, 0.2, 0.05}

	var buf bytes.Buffer
	require.NoError(t, PlotDensity(&buf, domain, density, []float64{0, 2, 4}, 20, 5))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1+5+2)
	assert.Equal(t, "0.5", lines[0])
	assert.Contains(t, lines[1], "*", "the peak reaches the top row")
	baseline := lines[6]
	assert.Len(t, baseline, 20)
	assert.Equal(t, 3, strings.Count(baseline, "|"))
	assert.Equal(t, byte('|'), baseline[0])
	assert.Equal(t, byte('|'), baseline[19])
	assert.True(t, strings.HasPrefix(lines[7], "0 "))
	assert.True(t, strings.HasSuffix(lines[7], " 4"))
}

func TestPlotDensity_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PlotDensity(&buf, []float64{0, 1}, []float64{1}, nil, 40, 10))
	assert.Error(t, PlotDensity(&buf, []float64{0}, []float64{1}, nil, 40, 10))
	assert.Error(t, PlotDensity(&buf, []float64{0, 1}, []float64{0, 0}, nil, 40, 10))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "50,000", FormatCount(50000))
	assert.Equal(t, "9", FormatCount(9))
}
