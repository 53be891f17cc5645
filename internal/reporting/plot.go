package reporting

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	minPlotWidth  = 16
	minPlotHeight = 4
	// DefaultPlotHeight is the number of rows above the baseline.
	DefaultPlotHeight = 12
)

// PlotDensity draws the density curve as ASCII art with one '|' on the
// baseline for each code sample.
func PlotDensity(w io.Writer, domain, density, codeSamples []float64, width, height int) error {
	if len(domain) != len(density) {
		return fmt.Errorf("plot: %d domain points but %d density values", len(domain), len(density))
	}
	if len(domain) < 2 {
		return fmt.Errorf("plot: need at least 2 points, got %d", len(domain))
	}
	width = max(width, minPlotWidth)
	height = max(height, minPlotHeight)

	lo, hi := domain[0], domain[len(domain)-1]
	for _, s := range codeSamples {
		lo, hi = math.Min(lo, s), math.Max(hi, s)
	}
	peak := 0.0
	for _, d := range density {
		peak = math.Max(peak, d)
	}
	if !(hi > lo) || !(peak > 0) {
		return fmt.Errorf("plot: empty range [%g, %g] or zero density", lo, hi)
	}

	column := func(x float64) int {
		c := int((x - lo) / (hi - lo) * float64(width-1))
		return min(max(c, 0), width-1)
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}
	for c := 0; c < width; c++ {
		x := lo + (hi-lo)*float64(c)/float64(width-1)
		d := interpolate(domain, density, x)
		if d <= 0 {
			continue
		}
		r := height - 1 - int(math.Round(d/peak*float64(height-1)))
		grid[r][c] = '*'
	}

	baseline := []byte(strings.Repeat("-", width))
	for _, s := range codeSamples {
		baseline[column(s)] = '|'
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%.4g\n", peak))
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}
	b.Write(baseline)
	b.WriteString("\n")

	left, right := fmt.Sprintf("%.4g", lo), fmt.Sprintf("%.4g", hi)
	gap := max(width-len(left)-len(right), 1)
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// interpolate evaluates the piecewise linear curve (xs, ys) at x. Outside
// [xs[0], xs[n-1]] it returns 0.
func interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x < xs[0] || x > xs[n-1] {
		return 0
	}
	for i := 1; i < n; i++ {
		if x <= xs[i] {
			dx := xs[i] - xs[i-1]
			if dx == 0 {
				return ys[i]
			}
			t := (x - xs[i-1]) / dx
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[n-1]
}
