package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Moments are the statistical moments of one QoI.
type Moments struct {
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
}

// SobolIndex is the fraction of a QoI's variance attributed to one subset of
// the input parameters, identified by their indices in scheme order.
type SobolIndex struct {
	Subset []int   `json:"subset"`
	Value  float64 `json:"value"`
}

// Key renders the subset as a stable identifier such as "0,2".
func (s SobolIndex) Key() string {
	parts := make([]string, len(s.Subset))
	for i, idx := range s.Subset {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// AnalysisResult is the persisted outcome of a moment and sensitivity analysis.
type AnalysisResult struct {
	CampaignID string   `json:"campaign_id"`
	Parameters []string `json:"parameters"`
	QoIs       []string `json:"qois"`

	Moments map[string]Moments `json:"statistical_moments"`
	// Sobols keeps each QoI's indices in the order the analyzer produced them.
	Sobols     map[string][]SobolIndex `json:"sobols"`
	NumSamples int                     `json:"n_samples"`
}

// MomentsFor returns the moments of qoi.
func (r *AnalysisResult) MomentsFor(qoi string) (Moments, error) {
	m, ok := r.Moments[qoi]
	if !ok {
		return Moments{}, fmt.Errorf("%w: %q", ErrUnknownQoI, qoi)
	}
	return m, nil
}

// SobolsFor returns the ordered sensitivity indices of qoi.
func (r *AnalysisResult) SobolsFor(qoi string) ([]SobolIndex, error) {
	s, ok := r.Sobols[qoi]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQoI, qoi)
	}
	return s, nil
}

// EmpiricalDistribution is the Monte Carlo image of the input uncertainty
// through the surrogate.
type EmpiricalDistribution struct {
	QoI    string    `json:"qoi"`
	Values []float64 `json:"values"`
	// CodeSamples are the QoI values the simulation code produced at the
	// collocation nodes.
	CodeSamples []float64 `json:"code_samples,omitempty"`
	Seed        int64     `json:"seed"`
}

// Len returns the number of Monte Carlo values.
func (d *EmpiricalDistribution) Len() int { return len(d.Values) }
