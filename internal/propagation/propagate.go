// Package propagation pushes samples of the input marginals through a fitted
// surrogate to obtain an empirical distribution of one QoI.
package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of rows a worker evaluates between context checks.
const chunkSize = 1024

// Evaluator is the surrogate interface propagation depends on.
type Evaluator interface {
	Evaluate(qoi string, point []float64) (float64, error)
	Dim() int
}

// Options controls sampling and parallelism.
type Options struct {
	// Seed drives the input draws. A negative seed is non-deterministic.
	Seed int64

	// Workers is the number of concurrent evaluators. Zero or less uses
	// runtime.GOMAXPROCS(0).
	Workers int
}

// Propagate draws n joint samples from marginals and evaluates qoi at each
// through evaluator. For a fixed seed the result does not depend on
// opts.Workers.
func Propagate(ctx context.Context, evaluator Evaluator, marginals []models.Marginal, qoi string, n int, opts Options) (*models.EmpiricalDistribution, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidSampleCount, n)
	}
	if len(marginals) != evaluator.Dim() {
		return nil, fmt.Errorf("%w: %d marginals for a %d-dimensional surrogate",
			models.ErrDimensionMismatch, len(marginals), evaluator.Dim())
	}

	samples := draw(marginals, n, opts.Seed)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	slog.Debug("propagating", "qoi", qoi, "samples", n, "dims", len(marginals), "workers", workers, "seed", opts.Seed)

	values := make([]float64, n)
	eg, ctx := errgroup.WithContext(ctx)
	per := (n + workers - 1) / workers
	for start := 0; start < n; start += per {
		end := min(start+per, n)
		eg.Go(func() error {
			return evaluateRange(ctx, evaluator, qoi, samples, values, start, end)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &models.EmpiricalDistribution{
		QoI:    qoi,
		Values: values,
		Seed:   opts.Seed,
	}, nil
}

// draw returns an n x d sample matrix filled column by column from a single
// source, so marginal j's draws all come before marginal j+1's.
func draw(marginals []models.Marginal, n int, seed int64) [][]float64 {
	rng := statistics.NewRand(seed)
	rows := make([][]float64, n)
	flat := make([]float64, n*len(marginals))
	for i := range rows {
		rows[i] = flat[i*len(marginals) : (i+1)*len(marginals)]
	}
	for j, m := range marginals {
		for i := 0; i < n; i++ {
			rows[i][j] = m.Sample(rng)
		}
	}
	return rows
}

func evaluateRange(ctx context.Context, evaluator Evaluator, qoi string, samples [][]float64, out []float64, start, end int) error {
	for i := start; i < end; i++ {
		if (i-start)%chunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		v, err := evaluator.Evaluate(qoi, samples[i])
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}
