package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// linearScale maps [0, max] onto [0, extent] pixels using go-chart's range.
func linearScale(max float64, extent int) chart.ContinuousRange {
	if !(max > 0) {
		max = 1
	}
	return chart.ContinuousRange{Min: 0, Max: max, Domain: extent}
}

// band is a d3-style band scale: n equal slots across extent with
// proportional inner and outer padding.
type band struct {
	step      float64
	bandwidth float64
	start     float64
}

func newBand(n, extent int, padding float64) band {
	if n <= 0 {
		return band{}
	}
	step := float64(extent) / (float64(n) - padding + 2*padding)
	return band{
		step:      step,
		bandwidth: step * (1 - padding),
		start:     step * padding,
	}
}

func (b band) x(i int) int      { return int(math.Round(b.start + float64(i)*b.step)) }
func (b band) width() int       { return int(math.Round(b.bandwidth)) }
func (b band) center(i int) int { return b.x(i) + b.width()/2 }

// niceTicks returns about count evenly spaced round values covering [0, max].
func niceTicks(max float64, count int) []float64 {
	if !(max > 0) || count < 1 {
		return []float64{0}
	}
	step := niceStep(max / float64(count))
	var ticks []float64
	for v := 0.0; v <= max+step*1e-9; v += step {
		ticks = append(ticks, math.Round(v/step)*step)
	}
	return ticks
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm >= math.Sqrt(50):
		return 10 * mag
	case norm >= math.Sqrt(10):
		return 5 * mag
	case norm >= math.Sqrt(2):
		return 2 * mag
	default:
		return mag
	}
}
