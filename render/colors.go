package render

import "purchase-explorer/models"

// Histogram fills. The map is fixed, not derived from the data.
const (
	ColorMale    = "#4e79a7"
	ColorFemale  = "#e15759"
	ColorNeutral = "#59a14f"
)

// CategoryColor picks the histogram fill for the current selection.
func CategoryColor(sel models.Selection) string {
	if !sel.Active {
		return ColorNeutral
	}
	switch sel.Category {
	case "Male":
		return ColorMale
	case "Female":
		return ColorFemale
	default:
		return ColorNeutral
	}
}
