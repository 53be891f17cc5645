// Package surrogate evaluates the tensor-product Lagrange interpolant fitted
// through a collocation grid.
//
// A Model holds only immutable state once built, so Evaluate is safe to call
// from any number of goroutines.
package surrogate

import (
	"fmt"

	"github.com/vecma/uqpost/internal/models"
)

// Model is a fitted interpolant, one value tensor per QoI.
type Model struct {
	names  []string
	rules  []models.Rule
	bary   [][]float64
	size   int
	qois   []string
	values map[string][]float64
}

// New builds a model over the tensor grid of rules. Each entry of values is a
// QoI's node outputs in row-major grid order (last parameter fastest).
func New(names []string, rules []models.Rule, qois []string, values map[string][]float64) (*Model, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("surrogate: no parameters")
	}
	if len(names) != len(rules) {
		return nil, fmt.Errorf("surrogate: %d names for %d rules: %w", len(names), len(rules), models.ErrDimensionMismatch)
	}

	size := 1
	bary := make([][]float64, len(rules))
	for d, r := range rules {
		if r.Len() == 0 {
			return nil, fmt.Errorf("surrogate: parameter %q has no nodes", names[d])
		}
		size *= r.Len()
		bary[d] = baryWeights(r.Nodes)
	}

	m := &Model{
		names:  append([]string(nil), names...),
		rules:  append([]models.Rule(nil), rules...),
		bary:   bary,
		size:   size,
		qois:   append([]string(nil), qois...),
		values: make(map[string][]float64, len(qois)),
	}
	for _, q := range qois {
		v, ok := values[q]
		if !ok {
			return nil, fmt.Errorf("surrogate: no values for %q: %w", q, models.ErrUnknownQoI)
		}
		if len(v) != size {
			return nil, fmt.Errorf("surrogate: %q has %d values, grid has %d nodes: %w", q, len(v), size, models.ErrInsufficientSamples)
		}
		m.values[q] = append([]float64(nil), v...)
	}
	return m, nil
}

// Dim returns the number of input parameters.
func (m *Model) Dim() int { return len(m.rules) }

// QoIs returns the quantities the model was fitted for.
func (m *Model) QoIs() []string { return append([]string(nil), m.qois...) }

// ParameterNames returns the input parameter names in point order.
func (m *Model) ParameterNames() []string { return append([]string(nil), m.names...) }

// NodeValues returns a copy of the fitted outputs of qoi in grid order.
func (m *Model) NodeValues(qoi string) ([]float64, error) {
	v, ok := m.values[qoi]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownQoI, qoi)
	}
	return append([]float64(nil), v...), nil
}

// Evaluate predicts qoi at point. Points outside the grid are extrapolated.
func (m *Model) Evaluate(qoi string, point []float64) (float64, error) {
	v, ok := m.values[qoi]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownQoI, qoi)
	}
	if len(point) != len(m.rules) {
		return 0, fmt.Errorf("%w: point has %d coordinates, model has %d parameters", models.ErrDimensionMismatch, len(point), len(m.rules))
	}

	// Contract the value tensor one axis at a time, last axis first.
	cur := v
	for d := len(m.rules) - 1; d >= 0; d-- {
		basis := lagrangeBasis(m.rules[d].Nodes, m.bary[d], point[d])
		n := len(basis)
		outer := len(cur) / n
		next := make([]float64, outer)
		for o := 0; o < outer; o++ {
			row := cur[o*n : (o+1)*n]
			s := 0.0
			for i, b := range basis {
				s += row[i] * b
			}
			next[o] = s
		}
		cur = next
	}
	return cur[0], nil
}

// Evaluate predicts qoi at point with model m.
func Evaluate(m *Model, qoi string, point []float64) (float64, error) {
	return m.Evaluate(qoi, point)
}
