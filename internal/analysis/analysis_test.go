package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/testutil"
)

const sobolTolerance = 1e-6

func fixture2D(response func(x []float64) []float64, columns ...string) testutil.GridFixture {
	return testutil.GridFixture{
		ID: "analysis",
		Parameters: []models.Parameter{
			{Name: "a", Marginal: models.Uniform(0, 1), Rule: testutil.ClenshawCurtis3()},
			{Name: "b", Marginal: models.Uniform(0, 1), Rule: testutil.ClenshawCurtis3()},
		},
		Columns:  columns,
		Response: response,
	}
}

func sobolMap(indices []models.SobolIndex) map[string]float64 {
	out := make(map[string]float64, len(indices))
	for _, s := range indices {
		out[s.Key()] = s.Value
	}
	return out
}

func TestAnalyze_MeanMatchesHandComputedWeightedAverage(t *testing.T) {
	testutil.UseTestLogger(t)
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0] + 2*x[1]} }, "E_mean")
	scheme := f.Scheme(t)
	table := f.Table(t)
	require.Len(t, scheme.Nodes, 9)

	// Hand computation over the nine runs with the 1-D weights 1/6, 2/3, 1/6.
	w := []float64{1.0 / 6, 2.0 / 3, 1.0 / 6}
	x := []float64{0, 0.5, 1}
	want := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want += w[i] * w[j] * (x[i] + 2*x[j])
		}
	}

	result, _, err := Analyze(table, scheme, []string{"E_mean"})
	require.NoError(t, err)

	m := result.Moments["E_mean"]
	assert.InDelta(t, want, m.Mean, 1e-14)
	assert.InDelta(t, 1.5, m.Mean, 1e-14)
	assert.InDelta(t, 5.0/12, m.Variance, 1e-14)
	assert.InDelta(t, math.Sqrt(5.0/12), m.Std, 1e-14)
	assert.Equal(t, 9, result.NumSamples)
	assert.Equal(t, []string{"a", "b"}, result.Parameters)
}

func TestAnalyze_AdditiveResponseHasNoInteraction(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0] + 2*x[1]} }, "q")

	result, _, err := Analyze(f.Table(t), f.Scheme(t), nil)
	require.NoError(t, err)

	s := sobolMap(result.Sobols["q"])
	assert.InDelta(t, 0.2, s["0"], 1e-12)
	assert.InDelta(t, 0.8, s["1"], 1e-12)
	assert.InDelta(t, 0.0, s["0,1"], 1e-12)
}

func TestAnalyze_ProductResponseInteraction(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0] * x[1]} }, "q")

	result, _, err := Analyze(f.Table(t), f.Scheme(t), []string{"q"})
	require.NoError(t, err)

	m := result.Moments["q"]
	assert.InDelta(t, 0.25, m.Mean, 1e-14)
	assert.InDelta(t, 7.0/144, m.Variance, 1e-14)

	s := sobolMap(result.Sobols["q"])
	assert.InDelta(t, 3.0/7, s["0"], 1e-12)
	assert.InDelta(t, 3.0/7, s["1"], 1e-12)
	assert.InDelta(t, 1.0/7, s["0,1"], 1e-12)
}

func TestAnalyze_SobolIndicesSumToOne(t *testing.T) {
	f := testutil.GridFixture{
		Parameters: []models.Parameter{
			{Name: "a", Marginal: models.Uniform(0, 1), Rule: testutil.ClenshawCurtis3()},
			{Name: "b", Marginal: models.Uniform(0, 1), Rule: testutil.GaussLegendre2()},
			{Name: "c", Marginal: models.Uniform(0, 1), Rule: testutil.ClenshawCurtis3()},
		},
		Columns: []string{"ishigami", "exp"},
		Response: func(x []float64) []float64 {
			return []float64{
				math.Sin(x[0]) + 7*math.Pow(math.Sin(x[1]), 2) + 0.1*math.Pow(x[2], 4)*math.Sin(x[0]),
				math.Exp(x[0]*x[1]) - x[2],
			}
		},
	}

	result, _, err := Analyze(f.Table(t), f.Scheme(t), nil)
	require.NoError(t, err)

	for _, q := range []string{"ishigami", "exp"} {
		sum := 0.0
		for _, s := range result.Sobols[q] {
			assert.GreaterOrEqual(t, s.Value, 0.0)
			sum += s.Value
		}
		assert.InDelta(t, 1.0, sum, sobolTolerance, "qoi %s", q)
	}
}

func TestAnalyze_SobolOrder(t *testing.T) {
	f := testutil.GridFixture{
		Parameters: []models.Parameter{
			{Name: "a", Marginal: models.Uniform(0, 1), Rule: testutil.GaussLegendre2()},
			{Name: "b", Marginal: models.Uniform(0, 1), Rule: testutil.GaussLegendre2()},
			{Name: "c", Marginal: models.Uniform(0, 1), Rule: testutil.GaussLegendre2()},
		},
		Columns:  []string{"q"},
		Response: func(x []float64) []float64 { return []float64{x[0]*x[1] + x[2]} },
	}

	result, _, err := Analyze(f.Table(t), f.Scheme(t), nil)
	require.NoError(t, err)

	var keys []string
	for _, s := range result.Sobols["q"] {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{"0", "1", "2", "0,1", "0,2", "1,2", "0,1,2"}, keys)
}

func TestAnalyze_Deterministic(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{math.Cos(3*x[0]) * x[1], x[0] - x[1]*x[1]} }, "p", "q")
	table, scheme := f.Table(t), f.Scheme(t)

	r1, _, err := Analyze(table, scheme, nil)
	require.NoError(t, err)
	r2, _, err := Analyze(table, scheme, nil)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestAnalyze_MatchesRunsByIDNotPosition(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0] + 3*x[0]*x[1]} }, "q")
	scheme := f.Scheme(t)
	table := f.Table(t)

	want, _, err := Analyze(table, scheme, nil)
	require.NoError(t, err)

	// Same runs, listed in reverse order in the scheme.
	reversed := &models.SamplingScheme{Parameters: scheme.Parameters}
	for i := len(scheme.Nodes) - 1; i >= 0; i-- {
		reversed.Nodes = append(reversed.Nodes, scheme.Nodes[i])
	}

	got, _, err := Analyze(table, reversed, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Moments, got.Moments)
	assert.Equal(t, want.Sobols, got.Sobols)
}

func TestAnalyze_InsufficientSamples(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0]} }, "q")
	scheme := f.Scheme(t)

	t.Run("missing table row", func(t *testing.T) {
		table := f.Table(t)
		delete(table.Records, "Run_4")

		_, _, err := Analyze(table, scheme, nil)
		require.ErrorIs(t, err, models.ErrInsufficientSamples)
		assert.Contains(t, err.Error(), "Run_4")
		assert.Contains(t, err.Error(), "8 of 9")
	})

	t.Run("scheme covers part of the grid", func(t *testing.T) {
		partial := &models.SamplingScheme{Parameters: scheme.Parameters, Nodes: scheme.Nodes[:5]}
		_, _, err := Analyze(f.Table(t), partial, nil)
		require.ErrorIs(t, err, models.ErrInsufficientSamples)
	})
}

func TestAnalyze_UnknownQoI(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{x[0]} }, "q")
	_, _, err := Analyze(f.Table(t), f.Scheme(t), []string{"nope"})
	require.ErrorIs(t, err, models.ErrUnknownQoI)
}

func TestAnalyze_ConstantResponse(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{4.2} }, "q")

	result, _, err := Analyze(f.Table(t), f.Scheme(t), nil)
	require.NoError(t, err)

	assert.InDelta(t, 4.2, result.Moments["q"].Mean, 1e-14)
	assert.InDelta(t, 0, result.Moments["q"].Std, 1e-7)
	for _, s := range result.Sobols["q"] {
		assert.Equal(t, 0.0, s.Value)
	}
}

func TestAnalyze_SurrogateInterpolatesNodes(t *testing.T) {
	f := fixture2D(func(x []float64) []float64 { return []float64{math.Exp(x[0]) * x[1]} }, "q")
	scheme := f.Scheme(t)
	table := f.Table(t)

	_, model, err := Analyze(table, scheme, nil)
	require.NoError(t, err)

	for _, n := range scheme.Nodes {
		rec, _ := table.Lookup(n.RunID)
		got, err := model.Evaluate("q", n.Point)
		require.NoError(t, err)
		assert.Equal(t, rec.Values["q"], got, "run %s", n.RunID)
	}
}

func TestFirstAndTotalOrder(t *testing.T) {
	idx := []models.SobolIndex{
		{Subset: []int{0}, Value: 0.5},
		{Subset: []int{1}, Value: 0.3},
		{Subset: []int{0, 1}, Value: 0.2},
	}
	assert.Equal(t, []float64{0.5, 0.3}, FirstOrder(idx, 2))
	assert.InDeltaSlice(t, []float64{0.7, 0.5}, TotalOrder(idx, 2), 1e-15)
}
