package analysis

// contractAxis sums tensor t of the given row-major shape along axis k with
// weights w and returns the reduced tensor and its shape.
func contractAxis(t []float64, shape []int, k int, w []float64) ([]float64, []int) {
	outer := 1
	for _, s := range shape[:k] {
		outer *= s
	}
	inner := 1
	for _, s := range shape[k+1:] {
		inner *= s
	}
	n := shape[k]

	out := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for j := 0; j < n; j++ {
			base := (o*n + j) * inner
			wj := w[j]
			for i := 0; i < inner; i++ {
				out[o*inner+i] += wj * t[base+i]
			}
		}
	}

	reduced := make([]int, 0, len(shape)-1)
	reduced = append(reduced, shape[:k]...)
	reduced = append(reduced, shape[k+1:]...)
	return out, reduced
}

// marginalize integrates t over every axis whose bit is not set in keep. The
// result is indexed by the kept axes in their original order.
func marginalize(t []float64, shape []int, weights [][]float64, keep uint) ([]float64, []int) {
	cur, curShape := t, shape
	for k := len(shape) - 1; k >= 0; k-- {
		if keep&(1<<uint(k)) != 0 {
			continue
		}
		cur, curShape = contractAxis(cur, curShape, k, weights[k])
	}
	return cur, curShape
}

// weightedSumSquares returns the weighted sum of t squared over every axis of
// a tensor built from the axes set in keep.
func weightedSumSquares(t []float64, shape []int, weights [][]float64, keep uint) float64 {
	sq := make([]float64, len(t))
	for i, v := range t {
		sq[i] = v * v
	}
	kept := make([][]float64, 0, len(shape))
	for k := range weights {
		if keep&(1<<uint(k)) != 0 {
			kept = append(kept, weights[k])
		}
	}
	cur, curShape := sq, shape
	for k := len(curShape) - 1; k >= 0; k-- {
		cur, curShape = contractAxis(cur, curShape, k, kept[k])
	}
	return cur[0]
}
