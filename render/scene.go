package render

import (
	"fmt"

	"purchase-explorer/models"
	"purchase-explorer/viewer"
)

// Margin is the space around a panel's plotting area.
type Margin struct {
	Top, Right, Bottom, Left int
}

// Layout is the outer size of one chart panel.
type Layout struct {
	Width  int
	Height int
	Margin Margin
}

// DefaultLayout matches the 600x400 panels of the page.
var DefaultLayout = Layout{
	Width:  600,
	Height: 400,
	Margin: Margin{Top: 30, Right: 120, Bottom: 50, Left: 70},
}

// InnerWidth is the width of the plotting area.
func (l Layout) InnerWidth() int { return l.Width - l.Margin.Left - l.Margin.Right }

// InnerHeight is the height of the plotting area.
func (l Layout) InnerHeight() int { return l.Height - l.Margin.Top - l.Margin.Bottom }

const (
	// Headroom scales the tallest bar's value to leave a gap under the top edge.
	Headroom = 1.1

	barPadding = 0.3
	barFill    = "#4ea758"

	opacityIdle     = 0.8
	opacityActive   = 1.0
	opacityDimmed   = 0.3
	selectedStroke  = "#222222"
	selectedStrokeW = 2
)

// Tick is one labelled axis position, in pixels from the axis origin.
type Tick struct {
	Pos   int
	Label string
}

// Tooltip is the hover card. Zero value means hidden.
type Tooltip struct {
	Visible bool
	X, Y    int
	Width   int
	Lines   []string
}

// Bar is one category bar of the bar chart.
type Bar struct {
	Category    string
	Total       float64
	Count       int
	X, Y        int
	Width       int
	Height      int
	Fill        string
	Opacity     float64
	Stroke      string
	StrokeWidth int
	Label       string
	LabelX      int
	LabelY      int
}

// BarScene is the fully laid out category chart.
type BarScene struct {
	Layout  Layout
	Bars    []Bar
	YMax    float64
	YTicks  []Tick
	XLabel  string
	YLabel  string
	Tooltip Tooltip
}

// BinBar is one histogram column.
type BinBar struct {
	Index   int
	Lower   float64
	Upper   float64
	Count   int
	X, Y    int
	Width   int
	Height  int
	Opacity float64
}

// HistogramScene is the fully laid out amount histogram.
type HistogramScene struct {
	Layout  Layout
	Title   string
	Fill    string
	Bins    []BinBar
	XTicks  []Tick
	YTicks  []Tick
	XLabel  string
	YLabel  string
	Tooltip Tooltip
}

// barOpacity derives a bar's opacity from the selection, with the hovered
// bar raised. Leaving a bar falls back to the selection, not to the idle look.
func barOpacity(category string, sel models.Selection, hover viewer.Hover) float64 {
	switch {
	case hover.OnCategory(category):
		return opacityActive
	case !sel.Active:
		return opacityIdle
	case sel.Is(category):
		return opacityActive
	default:
		return opacityDimmed
	}
}

// BuildBarScene lays out one bar per aggregate row. The y domain is
// [0, Headroom * max total].
func BuildBarScene(v viewer.View, l Layout) BarScene {
	s := BarScene{
		Layout: l,
		XLabel: "Gender",
		YLabel: "Total Purchase Amount (USD)",
	}
	if v.Empty || len(v.Rows) == 0 {
		return s
	}

	maxTotal := 0.0
	for _, r := range v.Rows {
		if r.TotalAmount > maxTotal {
			maxTotal = r.TotalAmount
		}
	}
	s.YMax = maxTotal * Headroom

	h := l.InnerHeight()
	y := linearScale(s.YMax, h)
	x := newBand(len(v.Rows), l.InnerWidth(), barPadding)

	for i, r := range v.Rows {
		height := 0
		if r.TotalAmount > 0 {
			height = y.Translate(r.TotalAmount)
		}
		bar := Bar{
			Category: r.Category,
			Total:    r.TotalAmount,
			Count:    r.Count,
			X:        x.x(i),
			Y:        h - height,
			Width:    x.width(),
			Height:   height,
			Fill:     barFill,
			Opacity:  barOpacity(r.Category, v.Selection, v.Hover),
			Label:    Currency(r.TotalAmount),
			LabelX:   x.center(i),
			LabelY:   h - height - 5,
		}
		if v.Selection.Is(r.Category) {
			bar.Stroke = selectedStroke
			bar.StrokeWidth = selectedStrokeW
		}
		s.Bars = append(s.Bars, bar)

		if v.Hover.OnCategory(r.Category) {
			s.Tooltip = Tooltip{
				Visible: true,
				X:       bar.LabelX,
				Y:       bar.Y + bar.Height/2,
				Width:   150,
				Lines: []string{
					r.Category,
					"Total: " + Currency(r.TotalAmount),
					"Purchases: " + Integer(r.Count),
				},
			}
		}
	}

	for _, t := range niceTicks(s.YMax, 5) {
		s.YTicks = append(s.YTicks, Tick{Pos: h - y.Translate(t), Label: SI(t)})
	}
	return s
}

// HistogramTitle names the customers the histogram currently covers.
func HistogramTitle(sel models.Selection) string {
	if !sel.Active {
		return "Purchase Amount Distribution (All Customers)"
	}
	return fmt.Sprintf("Purchase Amount Distribution (%s)", sel.Category)
}

// BuildHistogramScene lays out the amount bins. Fill follows the selection
// through CategoryColor.
func BuildHistogramScene(v viewer.View, l Layout) HistogramScene {
	s := HistogramScene{
		Layout: l,
		Title:  HistogramTitle(v.Selection),
		Fill:   CategoryColor(v.Selection),
		XLabel: "Purchase Amount (USD)",
		YLabel: "Number of Purchases",
	}
	if v.Empty || len(v.Bins) == 0 {
		return s
	}

	lo, hi := v.Bins[0].Lower, v.Bins[len(v.Bins)-1].Upper
	w, h := l.InnerWidth(), l.InnerHeight()
	xr := linearScale(hi-lo, w)
	xAt := func(val float64) int { return xr.Translate(val - lo) }

	maxCount := 0
	for _, b := range v.Bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	y := linearScale(float64(maxCount), h)

	for i, b := range v.Bins {
		height := 0
		if b.Count > 0 {
			height = y.Translate(float64(b.Count))
		}
		x0, x1 := xAt(b.Lower), xAt(b.Upper)
		width := x1 - x0 - 1
		if width < 1 {
			width = 1
		}
		opacity := opacityIdle
		if v.Hover.OnBin(i) {
			opacity = opacityActive
		}
		s.Bins = append(s.Bins, BinBar{
			Index:   i,
			Lower:   b.Lower,
			Upper:   b.Upper,
			Count:   b.Count,
			X:       x0,
			Y:       h - height,
			Width:   width,
			Height:  height,
			Opacity: opacity,
		})

		if v.Hover.OnBin(i) {
			closer := ")"
			if i == len(v.Bins)-1 {
				closer = "]"
			}
			s.Tooltip = Tooltip{
				Visible: true,
				X:       x0 + width/2,
				Y:       h - height - 10,
				Width:   130,
				Lines: []string{
					fmt.Sprintf("[%s, %s%s", Currency(b.Lower), Currency(b.Upper), closer),
					"Purchases: " + Integer(b.Count),
				},
			}
		}
	}

	for _, t := range niceTicks(hi-lo, 10) {
		s.XTicks = append(s.XTicks, Tick{Pos: xAt(lo + t), Label: SI(lo + t)})
	}
	for _, t := range niceTicks(float64(maxCount), 5) {
		s.YTicks = append(s.YTicks, Tick{Pos: h - y.Translate(t), Label: SI(t)})
	}
	return s
}
