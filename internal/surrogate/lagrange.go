package surrogate

// baryWeights returns the barycentric weights 1/prod_{k!=i}(x_i - x_k).
func baryWeights(nodes []float64) []float64 {
	w := make([]float64, len(nodes))
	for i, xi := range nodes {
		p := 1.0
		for k, xk := range nodes {
			if k != i {
				p *= xi - xk
			}
		}
		w[i] = 1 / p
	}
	return w
}

// lagrangeBasis evaluates every Lagrange basis polynomial of nodes at x using
// the second barycentric form. At a node the basis is the unit vector.
func lagrangeBasis(nodes, bary []float64, x float64) []float64 {
	out := make([]float64, len(nodes))
	if len(nodes) == 1 {
		out[0] = 1
		return out
	}
	for i, xi := range nodes {
		if x == xi {
			out[i] = 1
			return out
		}
	}
	sum := 0.0
	for i, xi := range nodes {
		t := bary[i] / (x - xi)
		out[i] = t
		sum += t
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
