// Package viewer holds the interactive state of the purchase explorer and
// the reducer that moves it from one event to the next.
package viewer

import (
	"fmt"

	"purchase-explorer/models"
)

// Bounds is the inclusive age range of the loaded dataset. It is fixed for
// the lifetime of a Controller.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp pins v into [Min, Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// HoverKind says which element, if any, the pointer is over.
type HoverKind int

const (
	HoverNone HoverKind = iota
	HoverCategory
	HoverBin
)

// Hover is the transient tooltip target.
type Hover struct {
	Kind     HoverKind `json:"kind"`
	Category string    `json:"category,omitempty"`
	Bin      int       `json:"bin,omitempty"`
}

// OnCategory reports whether the pointer is over the bar of category.
func (h Hover) OnCategory(category string) bool {
	return h.Kind == HoverCategory && h.Category == category
}

// OnBin reports whether the pointer is over histogram bin i.
func (h Hover) OnBin(i int) bool {
	return h.Kind == HoverBin && h.Bin == i
}

// State is everything an event can change.
type State struct {
	Bound     int
	Selection models.Selection
	Hover     Hover
}

// Initial is the state right after load: every age, nothing selected.
func Initial(b Bounds) State {
	return State{Bound: b.Max, Selection: models.None()}
}

// Event is a user interaction dispatched to Reduce.
type Event interface {
	Type() string
}

// AgeBoundChanged is sent when the slider moves.
type AgeBoundChanged struct{ Value int }

// CategoryClicked is sent when a bar of the category chart is clicked.
type CategoryClicked struct{ Category string }

// CategoryHovered is sent when the pointer enters a category bar.
type CategoryHovered struct{ Category string }

// CategoryUnhovered is sent when the pointer leaves a category bar.
type CategoryUnhovered struct{}

// BinHovered is sent when the pointer enters histogram bin Index.
type BinHovered struct{ Index int }

// BinUnhovered is sent when the pointer leaves a histogram bin.
type BinUnhovered struct{}

// Reset returns to the initial state.
type Reset struct{}

func (AgeBoundChanged) Type() string   { return "age_bound_changed" }
func (CategoryClicked) Type() string   { return "category_clicked" }
func (CategoryHovered) Type() string   { return "category_hovered" }
func (CategoryUnhovered) Type() string { return "category_unhovered" }
func (BinHovered) Type() string        { return "bin_hovered" }
func (BinUnhovered) Type() string      { return "bin_unhovered" }
func (Reset) Type() string             { return "reset" }

// Reduce applies ev to s. It is pure: the same inputs always give the same
// state. The selection survives age changes; only Reset clears it.
func Reduce(s State, b Bounds, ev Event) State {
	switch e := ev.(type) {
	case AgeBoundChanged:
		s.Bound = b.Clamp(e.Value)
		s.Hover = Hover{}
	case CategoryClicked:
		s.Selection = s.Selection.Toggle(e.Category)
	case CategoryHovered:
		s.Hover = Hover{Kind: HoverCategory, Category: e.Category}
	case CategoryUnhovered:
		if s.Hover.Kind == HoverCategory {
			s.Hover = Hover{}
		}
	case BinHovered:
		s.Hover = Hover{Kind: HoverBin, Bin: e.Index}
	case BinUnhovered:
		if s.Hover.Kind == HoverBin {
			s.Hover = Hover{}
		}
	case Reset:
		s = Initial(b)
	}
	return s
}

// BoundLabel is the caption above the slider.
func BoundLabel(b Bounds, bound int) string {
	if bound >= b.Max {
		return "Ages: All"
	}
	return fmt.Sprintf("Ages: %d-%d", b.Min, bound)
}
