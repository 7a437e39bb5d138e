package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"purchase-explorer/models"
	"purchase-explorer/viewer"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" SVG "); err != nil || f != FormatSVG {
		t.Errorf("ParseFormat(SVG): got %q, %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("ParseFormat(gif): expected error")
	}
}

func TestExportBarChartPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportBarChart(&buf, sampleView(models.Of("Male"), viewer.Hover{}), FormatPNG); err != nil {
		t.Fatalf("ExportBarChart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestExportHistogramSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportHistogram(&buf, sampleView(models.None(), viewer.Hover{}), FormatSVG); err != nil {
		t.Fatalf("ExportHistogram: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output is not an SVG")
	}
}

func TestExportEmptyView(t *testing.T) {
	v := viewer.View{Empty: true}
	if err := ExportBarChart(&bytes.Buffer{}, v, FormatPNG); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("bar chart: got %v", err)
	}
	if err := ExportHistogram(&bytes.Buffer{}, v, FormatPNG); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("histogram: got %v", err)
	}
}

func TestExportBarChartAllZeroTotals(t *testing.T) {
	v := sampleView(models.None(), viewer.Hover{})
	for i := range v.Rows {
		v.Rows[i].TotalAmount = 0
	}
	var buf bytes.Buffer
	if err := ExportBarChart(&buf, v, FormatPNG); err != nil {
		t.Fatalf("ExportBarChart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}
