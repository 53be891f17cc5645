package models

import (
	"fmt"
	"math"
)

// Rule is a one-dimensional collocation rule: the nodes along one parameter
// axis and their quadrature weights.
type Rule struct {
	Nodes   []float64 `json:"nodes"`
	Weights []float64 `json:"weights"`
}

// Len returns the number of nodes in the rule.
func (r Rule) Len() int { return len(r.Nodes) }

// Parameter is one uncertain input of the campaign.
type Parameter struct {
	Name     string   `json:"name"`
	Marginal Marginal `json:"distribution"`
	Rule     Rule     `json:"rule"`
}

// Node is one point of the sampling scheme, tied to the run that evaluated it.
type Node struct {
	RunID string `json:"run_id"`
	// Index addresses the node inside each parameter's rule.
	Index  []int     `json:"index"`
	Point  []float64 `json:"point"`
	Weight float64   `json:"weight"`
}

// SamplingScheme is a tensor collocation grid over the campaign's inputs.
// It is immutable once loaded.
type SamplingScheme struct {
	Parameters []Parameter `json:"parameters"`
	Nodes      []Node      `json:"nodes"`
}

// Dim returns the number of input parameters.
func (s *SamplingScheme) Dim() int { return len(s.Parameters) }

// GridSize returns the number of nodes in the full tensor grid, which is the
// minimum number of runs the interpolant needs.
func (s *SamplingScheme) GridSize() int {
	if len(s.Parameters) == 0 {
		return 0
	}
	n := 1
	for _, p := range s.Parameters {
		n *= p.Rule.Len()
	}
	return n
}

// Vary returns the input marginals in parameter order.
func (s *SamplingScheme) Vary() []Marginal {
	out := make([]Marginal, len(s.Parameters))
	for i, p := range s.Parameters {
		out[i] = p.Marginal
	}
	return out
}

// ParameterNames returns the parameter names in order.
func (s *SamplingScheme) ParameterNames() []string {
	out := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		out[i] = p.Name
	}
	return out
}

// Rules returns the per-parameter rules in order.
func (s *SamplingScheme) Rules() []Rule {
	out := make([]Rule, len(s.Parameters))
	for i, p := range s.Parameters {
		out[i] = p.Rule
	}
	return out
}

// FlatIndex maps a multi-index to its position in the row-major grid, the
// last parameter varying fastest.
func (s *SamplingScheme) FlatIndex(index []int) (int, error) {
	if len(index) != len(s.Parameters) {
		return 0, fmt.Errorf("%w: index has %d entries, scheme has %d parameters", ErrDimensionMismatch, len(index), len(s.Parameters))
	}
	flat := 0
	for j, p := range s.Parameters {
		if index[j] < 0 || index[j] >= p.Rule.Len() {
			return 0, fmt.Errorf("index %d out of range for parameter %q (%d nodes)", index[j], p.Name, p.Rule.Len())
		}
		flat = flat*p.Rule.Len() + index[j]
	}
	return flat, nil
}

// Normalize fills in each node's point and weight from the rules when they are
// absent and checks the scheme for structural errors.
func (s *SamplingScheme) Normalize() error {
	if len(s.Parameters) == 0 {
		return fmt.Errorf("%w: scheme has no parameters", ErrInvalidCampaign)
	}
	seenNames := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter with empty name", ErrInvalidCampaign)
		}
		if seenNames[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidCampaign, p.Name)
		}
		seenNames[p.Name] = true
		if p.Rule.Len() == 0 {
			return fmt.Errorf("%w: parameter %q has an empty rule", ErrInvalidCampaign, p.Name)
		}
		if len(p.Rule.Weights) != p.Rule.Len() {
			return fmt.Errorf("%w: parameter %q has %d nodes but %d weights", ErrInvalidCampaign, p.Name, p.Rule.Len(), len(p.Rule.Weights))
		}
		if err := distinctNodes(p.Rule.Nodes); err != nil {
			return fmt.Errorf("%w: parameter %q: %v", ErrInvalidCampaign, p.Name, err)
		}
	}

	seenRuns := make(map[string]bool, len(s.Nodes))
	seenCells := make(map[int]string, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.RunID == "" {
			return fmt.Errorf("%w: node %d has no run id", ErrInvalidCampaign, i)
		}
		if seenRuns[n.RunID] {
			return fmt.Errorf("%w: duplicate run id %q", ErrMalformedOutput, n.RunID)
		}
		seenRuns[n.RunID] = true

		flat, err := s.FlatIndex(n.Index)
		if err != nil {
			return fmt.Errorf("%w: run %q: %v", ErrInvalidCampaign, n.RunID, err)
		}
		if other, ok := seenCells[flat]; ok {
			return fmt.Errorf("%w: runs %q and %q share grid index %v", ErrInvalidCampaign, other, n.RunID, n.Index)
		}
		seenCells[flat] = n.RunID

		if n.Point == nil {
			n.Point = make([]float64, len(s.Parameters))
			for j, p := range s.Parameters {
				n.Point[j] = p.Rule.Nodes[n.Index[j]]
			}
		} else if len(n.Point) != len(s.Parameters) {
			return fmt.Errorf("%w: run %q point has %d coordinates, scheme has %d parameters", ErrInvalidCampaign, n.RunID, len(n.Point), len(s.Parameters))
		}
		if n.Weight == 0 {
			w := 1.0
			for j, p := range s.Parameters {
				w *= p.Rule.Weights[n.Index[j]]
			}
			n.Weight = w
		}
	}
	return nil
}

func distinctNodes(nodes []float64) error {
	for i := range nodes {
		if math.IsNaN(nodes[i]) || math.IsInf(nodes[i], 0) {
			return fmt.Errorf("node %d is not finite", i)
		}
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i] == nodes[j] {
				return fmt.Errorf("nodes %d and %d coincide at %g", i, j, nodes[i])
			}
		}
	}
	return nil
}
