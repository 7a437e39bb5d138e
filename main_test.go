package main

import (
	"math"
	"reflect"
	"testing"

	"purchase-explorer/render"
	"purchase-explorer/viewer"
)

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"0", []int{0}, false},
		{"25, 35,40", []int{25, 35, 40}, false},
		{"30,,", []int{30}, false},
		{"", nil, true},
		{"abc", nil, true},
		{"-3", nil, true},
	}
	for _, tt := range tests {
		got, err := parseBounds(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBounds(%q): err %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseBounds(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSweepBounds(t *testing.T) {
	got, err := sweepBounds(viewer.Bounds{Min: 18, Max: 21})
	if err != nil {
		t.Fatalf("sweepBounds: %v", err)
	}
	want := []int{18, 19, 20, 21}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sweepBounds: got %v, want %v", got, want)
	}
}

func TestSweepBoundsRejectsBadSpans(t *testing.T) {
	tests := []viewer.Bounds{
		{Min: math.MinInt64, Max: 70},
		{Min: 0, Max: math.MaxInt},
		{Min: 40, Max: 20},
	}
	for _, b := range tests {
		if got, err := sweepBounds(b); err == nil {
			t.Errorf("sweepBounds(%+v): got %d bounds, want error", b, len(got))
		}
	}
}

func TestExportName(t *testing.T) {
	got := exportName("New York", "bars", 35, render.FormatSVG)
	if got != "new-york-bars-age-35.svg" {
		t.Errorf("exportName: got %q", got)
	}
}
