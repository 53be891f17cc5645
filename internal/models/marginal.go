package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-viper/mapstructure/v2"
)

// DistributionKind identifies the family of an input marginal.
type DistributionKind string

const (
	DistributionUniform DistributionKind = "uniform"
	DistributionNormal  DistributionKind = "normal"
)

// Marginal is the distribution of one input parameter, considered
// independently of the others.
type Marginal struct {
	Kind DistributionKind `json:"kind"`

	// Uniform bounds.
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`

	// Normal location and scale.
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`
}

// Uniform returns a uniform marginal on [lower, upper].
func Uniform(lower, upper float64) Marginal {
	return Marginal{Kind: DistributionUniform, Lower: lower, Upper: upper}
}

// Normal returns a normal marginal with the given mean and standard deviation.
func Normal(mean, stdDev float64) Marginal {
	return Marginal{Kind: DistributionNormal, Mean: mean, StdDev: stdDev}
}

// NewMarginal builds a marginal from a distribution kind and its untyped
// parameter map, as found in a scheme file.
func NewMarginal(kind DistributionKind, params map[string]any) (Marginal, error) {
	switch kind {
	case DistributionUniform:
		var v struct {
			Lower float64 `mapstructure:"lower"`
			Upper float64 `mapstructure:"upper"`
		}
		if err := mapstructure.WeakDecode(params, &v); err != nil {
			return Marginal{}, fmt.Errorf("uniform params: %w", err)
		}
		m := Uniform(v.Lower, v.Upper)
		return m, m.Validate()
	case DistributionNormal:
		var v struct {
			Mean   float64 `mapstructure:"mean"`
			StdDev float64 `mapstructure:"std_dev"`
		}
		if err := mapstructure.WeakDecode(params, &v); err != nil {
			return Marginal{}, fmt.Errorf("normal params: %w", err)
		}
		m := Normal(v.Mean, v.StdDev)
		return m, m.Validate()
	default:
		return Marginal{}, fmt.Errorf("'%s' is not a valid distribution kind", kind)
	}
}

// Validate reports whether the marginal's parameters describe a proper distribution.
func (m Marginal) Validate() error {
	switch m.Kind {
	case DistributionUniform:
		if !(m.Upper > m.Lower) {
			return fmt.Errorf("uniform marginal needs lower < upper, got [%g, %g]", m.Lower, m.Upper)
		}
	case DistributionNormal:
		if !(m.StdDev > 0) {
			return fmt.Errorf("normal marginal needs std_dev > 0, got %g", m.StdDev)
		}
	default:
		return fmt.Errorf("'%s' is not a valid distribution kind", m.Kind)
	}
	return nil
}

// Sample draws one value from the marginal.
func (m Marginal) Sample(rng *rand.Rand) float64 {
	switch m.Kind {
	case DistributionNormal:
		return m.Mean + m.StdDev*rng.NormFloat64()
	default:
		lo, hi := m.Support()
		return lo + (hi-lo)*rng.Float64()
	}
}

// Support returns the interval holding the marginal's probability mass.
// Normal marginals report the whole real line.
func (m Marginal) Support() (float64, float64) {
	if m.Kind == DistributionNormal {
		return math.Inf(-1), math.Inf(1)
	}
	return m.Lower, m.Upper
}

func (m Marginal) String() string {
	if m.Kind == DistributionNormal {
		return fmt.Sprintf("Normal(%g, %g)", m.Mean, m.StdDev)
	}
	return fmt.Sprintf("Uniform(%g, %g)", m.Lower, m.Upper)
}
