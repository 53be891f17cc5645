package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples used for
// the Monte Carlo mean. Propagated samples are large, so fewer resamples
// already give a stable percentile interval.
const DefaultBootstrapIterations = 1000

// BootstrapCI computes a percentile-bootstrap confidence interval for the mean
// of values. confidenceLevel should be in (0, 1), e.g. 0.95. A negative seed
// uses a non-deterministic source. Returns a degenerate interval at the mean
// when fewer than 2 values exist.
func BootstrapCI(values []float64, confidenceLevel float64, iterations int, seed int64) ConfidenceInterval {
	n := len(values)
	m := Mean(values)
	if n < 2 || iterations <= 0 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	rng := NewRand(seed)

	bootMeans := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += values[rng.Intn(n)]
		}
		bootMeans[i] = sum / float64(n)
	}

	sort.Float64s(bootMeans)

	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iterations)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iterations)))
	if hiIdx >= iterations {
		hiIdx = iterations - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iterations,
	}
}

// NewRand returns a seeded source. A negative seed uses a non-deterministic one.
func NewRand(seed int64) *rand.Rand {
	if seed >= 0 {
		return rand.New(rand.NewSource(seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

// BootstrapMeanCI is BootstrapCI with DefaultBootstrapIterations.
func BootstrapMeanCI(values []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	return BootstrapCI(values, confidenceLevel, DefaultBootstrapIterations, seed)
}
