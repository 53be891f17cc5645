// Package analysis derives statistical moments and Sobol sensitivity indices
// from a collated table on a tensor collocation grid, and fits the matching
// surrogate.
package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"

	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/surrogate"
)

// Analyze computes the moments and sensitivity indices of every QoI in qois
// and fits the surrogate through the same values. Table rows are matched to
// scheme nodes by run id. An empty qois list analyzes every table column.
func Analyze(table *models.CollatedTable, scheme *models.SamplingScheme, qois []string) (*models.AnalysisResult, *surrogate.Model, error) {
	if table == nil || scheme == nil {
		return nil, nil, fmt.Errorf("analysis: table and scheme are required")
	}
	if len(qois) == 0 {
		qois = table.Columns
	}
	for _, q := range qois {
		if !table.HasColumn(q) {
			return nil, nil, fmt.Errorf("%w: %q is not a collated column", models.ErrUnknownQoI, q)
		}
	}

	grid, err := alignToGrid(table, scheme)
	if err != nil {
		return nil, nil, err
	}

	shape := make([]int, scheme.Dim())
	ruleWeights := make([][]float64, scheme.Dim())
	for k, p := range scheme.Parameters {
		shape[k] = p.Rule.Len()
		ruleWeights[k] = normalized(p.Rule.Weights)
	}

	result := &models.AnalysisResult{
		Parameters: scheme.ParameterNames(),
		QoIs:       append([]string(nil), qois...),
		Moments:    make(map[string]models.Moments, len(qois)),
		Sobols:     make(map[string][]models.SobolIndex, len(qois)),
		NumSamples: len(grid),
	}
	values := make(map[string][]float64, len(qois))

	for _, q := range qois {
		f := make([]float64, len(grid))
		nodeWeights := make([]float64, len(grid))
		for i, rec := range grid {
			f[i] = rec.record.Values[q]
			nodeWeights[i] = rec.node.Weight
		}
		values[q] = f

		result.Moments[q] = weightedMoments(f, nodeWeights)
		result.Sobols[q] = sobolIndices(f, shape, ruleWeights)

		slog.Debug("Analyzed QoI", "qoi", q, "mean", result.Moments[q].Mean, "std", result.Moments[q].Std)
	}

	model, err := surrogate.New(scheme.ParameterNames(), scheme.Rules(), qois, values)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis: fitting surrogate: %w", err)
	}

	slog.Info("Analysis complete", "qois", len(qois), "samples", result.NumSamples, "parameters", scheme.Dim())
	return result, model, nil
}

type gridEntry struct {
	node   models.Node
	record models.RunOutputRecord
}

// alignToGrid places every table record at its node's flat grid position.
// Every grid cell must be covered by exactly one completed run.
func alignToGrid(table *models.CollatedTable, scheme *models.SamplingScheme) ([]gridEntry, error) {
	size := scheme.GridSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: scheme has an empty grid", models.ErrInsufficientSamples)
	}

	grid := make([]gridEntry, size)
	filled := make([]bool, size)
	var missing []string
	for _, n := range scheme.Nodes {
		flat, err := scheme.FlatIndex(n.Index)
		if err != nil {
			return nil, fmt.Errorf("analysis: run %q: %w", n.RunID, err)
		}
		rec, ok := table.Lookup(n.RunID)
		if !ok {
			missing = append(missing, n.RunID)
			continue
		}
		grid[flat] = gridEntry{node: n, record: rec}
		filled[flat] = true
	}

	completed := 0
	for _, ok := range filled {
		if ok {
			completed++
		}
	}
	if completed < size {
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %d of %d grid nodes have completed runs (first missing run %q)",
				models.ErrInsufficientSamples, completed, size, missing[0])
		}
		return nil, fmt.Errorf("%w: %d of %d grid nodes have completed runs", models.ErrInsufficientSamples, completed, size)
	}
	return grid, nil
}

// weightedMoments returns the weighted mean and second central moment of f.
func weightedMoments(f, w []float64) models.Moments {
	sumW, sumWF := 0.0, 0.0
	for i, v := range f {
		sumW += w[i]
		sumWF += w[i] * v
	}
	mean := sumWF / sumW

	sumSq := 0.0
	for i, v := range f {
		d := v - mean
		sumSq += w[i] * d * d
	}
	variance := sumSq / sumW
	return models.Moments{Mean: mean, Std: math.Sqrt(variance), Variance: variance}
}

// degenerateVariance is the relative variance below which a QoI is treated as
// constant and all of its indices are zero.
const degenerateVariance = 1e-14

// sobolIndices decomposes the variance of the tensor f into contributions of
// each parameter subset. The closed variance V_u of the conditional mean
// E[f | x_u] is computed by quadrature; the partial variance of u follows by
// Möbius inversion over the subsets of u.
func sobolIndices(f []float64, shape []int, weights [][]float64) []models.SobolIndex {
	d := len(shape)
	mean, _ := marginalize(f, shape, weights, 0)
	mean2 := mean[0] * mean[0]

	all := subsets(d)
	closed := make(map[uint]float64, len(all)+1)
	closed[0] = 0
	for _, u := range all {
		g, gShape := marginalize(f, shape, weights, u)
		closed[u] = weightedSumSquares(g, gShape, weights, u) - mean2
	}

	partial := make([]float64, len(all))
	total := 0.0
	for i, u := range all {
		dU := 0.0
		for _, v := range subMasks(u) {
			if (bits.OnesCount(u)-bits.OnesCount(v))%2 == 0 {
				dU += closed[v]
			} else {
				dU -= closed[v]
			}
		}
		if dU < 0 {
			dU = 0
		}
		partial[i] = dU
		total += dU
	}

	out := make([]models.SobolIndex, len(all))
	for i, u := range all {
		v := 0.0
		if total > degenerateVariance*math.Max(mean2, 1) {
			v = partial[i] / total
		}
		out[i] = models.SobolIndex{Subset: members(u), Value: v}
	}
	return out
}

func normalized(w []float64) []float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = v / sum
	}
	return out
}
