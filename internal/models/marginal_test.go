package models

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarginal(t *testing.T) {
	tests := []struct {
		name    string
		kind    DistributionKind
		params  map[string]any
		want    Marginal
		wantErr string
	}{
		{"uniform", DistributionUniform, map[string]any{"lower": 1, "upper": 5.5}, Uniform(1, 5.5), ""},
		{"normal", DistributionNormal, map[string]any{"mean": 0.0, "std_dev": 2}, Normal(0, 2), ""},
		{"uniform from strings", DistributionUniform, map[string]any{"lower": "0", "upper": "1"}, Uniform(0, 1), ""},
		{"inverted bounds", DistributionUniform, map[string]any{"lower": 2, "upper": 1}, Marginal{}, "lower < upper"},
		{"zero std", DistributionNormal, map[string]any{"mean": 1}, Marginal{}, "std_dev > 0"},
		{"unknown kind", DistributionKind("beta"), nil, Marginal{}, "not a valid distribution kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMarginal(tt.kind, tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarginal_SampleStaysInSupport(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := Uniform(-2, 3)
	lo, hi := m.Support()
	for i := 0; i < 1000; i++ {
		v := m.Sample(rng)
		assert.GreaterOrEqual(t, v, lo)
		assert.Less(t, v, hi)
	}
}

func TestMarginal_NormalSampleMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := Normal(10, 2)
	const n = 20000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := m.Sample(rng)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 10, mean, 0.1)
	assert.InDelta(t, 2, std, 0.1)

	lo, hi := m.Support()
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))
}
