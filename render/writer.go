package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"purchase-explorer/viewer"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the page's CSS and JS, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageOptions controls full-page output.
type PageOptions struct {
	// Static produces a self-contained file: CSS inlined, no script, slider
	// disabled. Used for snapshots written to disk.
	Static bool
}

type pageData struct {
	Title  string
	View   viewer.View
	Bars   BarScene
	Hist   HistogramScene
	Static bool
	CSS    template.CSS
}

// Writer renders views to HTML with inline SVG. Every call draws the panels
// from scratch.
type Writer struct {
	tmpl   *template.Template
	layout Layout
	css    template.CSS
}

// NewWriter parses the embedded templates.
func NewWriter(l Layout) (*Writer, error) {
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"half":          func(n int) int { return n / 2 },
		"lineY":         func(i int) int { return i * 16 },
		"tooltipHeight": func(lines []string) int { return len(lines)*16 + 6 },
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}

	css, err := fs.ReadFile(staticFS, "static/app.css")
	if err != nil {
		return nil, fmt.Errorf("render: read css: %w", err)
	}

	return &Writer{tmpl: tmpl, layout: l, css: template.CSS(css)}, nil
}

// Title is the page heading for a region.
func Title(region string) string {
	return "Purchase Amount by Gender: " + region
}

func (w *Writer) data(v viewer.View, static bool) pageData {
	d := pageData{
		Title:  Title(v.Region),
		View:   v,
		Static: static,
	}
	if static {
		d.CSS = w.css
	}
	if !v.Empty {
		d.Bars = BuildBarScene(v, w.layout)
		d.Hist = BuildHistogramScene(v, w.layout)
	}
	return d
}

// Page writes the full HTML document.
func (w *Writer) Page(out io.Writer, v viewer.View, opts PageOptions) error {
	if err := w.tmpl.ExecuteTemplate(out, "page", w.data(v, opts.Static)); err != nil {
		return fmt.Errorf("render: page: %w", err)
	}
	return nil
}

// Panels writes only the chart area: both SVG panels, or the empty-state
// message when the age subset has no records.
func (w *Writer) Panels(out io.Writer, v viewer.View) error {
	if err := w.tmpl.ExecuteTemplate(out, "panels", w.data(v, false)); err != nil {
		return fmt.Errorf("render: panels: %w", err)
	}
	return nil
}
