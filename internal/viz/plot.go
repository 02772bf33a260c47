package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// ResidualPlot renders a solve trace's residual series.
func ResidualPlot(residuals []float64, caption string) string {
	if len(residuals) == 0 {
		return "no iterations to plot"
	}
	return asciigraph.Plot(residuals,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// SweepPlot renders a per-target series from a workspace sweep, e.g.
// iterations or residual against the swept axis.
func SweepPlot(values []float64, caption string) string {
	if len(values) == 0 {
		return "no data to plot"
	}
	return asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// Sparkline renders a compact one-line history, newest to the right.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	rng := max - min
	if rng == 0 {
		rng = 1
	}

	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var b strings.Builder
	for _, v := range values[start:] {
		idx := int((v - min) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}
