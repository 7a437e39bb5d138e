package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"purchase-explorer/viewer"
)

// ErrNothingToDraw is returned when exporting a view with an empty subset.
var ErrNothingToDraw = errors.New("nothing to draw")

// Format is an export image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("render: unknown export format %q", s)
	}
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// ExportBarChart draws the category totals of v with go-chart.
func ExportBarChart(w io.Writer, v viewer.View, f Format) error {
	if v.Empty || len(v.Rows) == 0 {
		return ErrNothingToDraw
	}

	maxTotal := 0.0
	bars := make([]chart.Value, 0, len(v.Rows))
	for _, r := range v.Rows {
		if r.TotalAmount > maxTotal {
			maxTotal = r.TotalAmount
		}
		fill := hexColor(barFill).WithAlpha(uint8(255 * barOpacity(r.Category, v.Selection, viewer.Hover{})))
		style := chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 0}
		if v.Selection.Is(r.Category) {
			style.StrokeColor = hexColor(selectedStroke)
			style.StrokeWidth = selectedStrokeW
		}
		bars = append(bars, chart.Value{Label: r.Category, Value: r.TotalAmount, Style: style})
	}

	yRange := linearScale(maxTotal*Headroom, DefaultLayout.InnerHeight())
	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s (%s)", Title(v.Region), v.BoundLabel),
		Width:      DefaultLayout.Width,
		Height:     DefaultLayout.Height,
		BarWidth:   80,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		YAxis: chart.YAxis{
			Name:           "Total Purchase Amount (USD)",
			Range:          &yRange,
			ValueFormatter: func(v interface{}) string { return SI(toFloat(v)) },
		},
		Bars: bars,
	}
	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render: export bar chart: %w", err)
	}
	return nil
}

// ExportHistogram draws the amount bins of v with go-chart.
func ExportHistogram(w io.Writer, v viewer.View, f Format) error {
	if v.Empty || len(v.Bins) == 0 {
		return ErrNothingToDraw
	}

	fill := hexColor(CategoryColor(v.Selection))
	maxCount := 0
	bars := make([]chart.Value, 0, len(v.Bins))
	for _, b := range v.Bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		bars = append(bars, chart.Value{
			Label: SI(b.Lower),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}
	if maxCount == 0 {
		maxCount = 1
	}

	graph := chart.BarChart{
		Title:      HistogramTitle(v.Selection),
		Width:      900,
		Height:     DefaultLayout.Height,
		BarWidth:   30,
		BarSpacing: 8,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		YAxis: chart.YAxis{
			Name:           "Number of Purchases",
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
			ValueFormatter: func(v interface{}) string { return SI(toFloat(v)) },
		},
		Bars: bars,
	}
	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render: export histogram: %w", err)
	}
	return nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
