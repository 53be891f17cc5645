package statistics

import (
	"fmt"
	"math"

	"github.com/vecma/uqpost/internal/models"
)

// DefaultBandwidthDivisor sets the default KDE bandwidth to the sample range
// divided by this value. It is tuned for visualization, not for optimality.
const DefaultBandwidthDivisor = 30

// DefaultDensityPoints is the default number of evaluation points.
const DefaultDensityPoints = 100

// DensityOptions configures EstimateDensity.
type DensityOptions struct {
	// BandwidthDivisor divides the sample range to give the kernel bandwidth.
	// Zero selects DefaultBandwidthDivisor.
	BandwidthDivisor float64
}

func (o DensityOptions) divisor() float64 {
	if o.BandwidthDivisor == 0 {
		return DefaultBandwidthDivisor
	}
	return o.BandwidthDivisor
}

// Validate checks that a density can be estimated at nPoints locations with
// these options, without looking at any samples.
func (o DensityOptions) Validate(nPoints int) error {
	if nPoints < 2 {
		return fmt.Errorf("%w: need at least 2 density points, got %d", models.ErrInvalidPointCount, nPoints)
	}
	if d := o.divisor(); !(d > 0) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: bandwidth divisor must be positive and finite, got %g", models.ErrInvalidBandwidth, d)
	}
	return nil
}

// Density is a kernel density estimate sampled on an even grid.
type Density struct {
	Domain    []float64 `json:"domain"`
	Values    []float64 `json:"density"`
	Bandwidth float64   `json:"bandwidth"`
}

// EstimateDensity evaluates a Gaussian kernel density estimate of samples at
// nPoints equally spaced locations spanning [min(samples), max(samples)].
func EstimateDensity(samples []float64, nPoints int, opts DensityOptions) (*Density, error) {
	if err := opts.Validate(nPoints); err != nil {
		return nil, err
	}
	divisor := opts.divisor()
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", models.ErrDegenerateSampleSet)
	}

	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: sample %d is %g", models.ErrDegenerateSampleSet, i, s)
		}
	}

	lo, hi := MinMax(samples)
	if lo == hi {
		return nil, fmt.Errorf("%w: all %d samples equal %g", models.ErrDegenerateSampleSet, len(samples), lo)
	}

	h := (hi - lo) / divisor
	domain := make([]float64, nPoints)
	step := (hi - lo) / float64(nPoints-1)
	for i := range domain {
		domain[i] = math.Min(lo+step*float64(i), hi)
	}
	domain[0] = lo
	domain[nPoints-1] = hi

	norm := 1 / (float64(len(samples)) * h * math.Sqrt(2*math.Pi))
	density := make([]float64, nPoints)
	for i, x := range domain {
		sum := 0.0
		for _, s := range samples {
			u := (x - s) / h
			sum += math.Exp(-0.5 * u * u)
		}
		density[i] = sum * norm
	}

	return &Density{Domain: domain, Values: density, Bandwidth: h}, nil
}
