package analysis

import "github.com/vecma/uqpost/internal/models"

// FirstOrder returns the main-effect index of each of dim parameters.
func FirstOrder(indices []models.SobolIndex, dim int) []float64 {
	out := make([]float64, dim)
	for _, s := range indices {
		if len(s.Subset) == 1 && s.Subset[0] < dim {
			out[s.Subset[0]] = s.Value
		}
	}
	return out
}

// TotalOrder returns the total-effect index of each of dim parameters: the sum
// over every subset that contains it.
func TotalOrder(indices []models.SobolIndex, dim int) []float64 {
	out := make([]float64, dim)
	for _, s := range indices {
		for _, p := range s.Subset {
			if p < dim {
				out[p] += s.Value
			}
		}
	}
	return out
}
