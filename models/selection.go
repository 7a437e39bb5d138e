package models

// Selection is the highlighted category of the bar chart, or none.
type Selection struct {
	Category string
	Active   bool
}

// None is the empty selection.
func None() Selection { return Selection{} }

// Of selects a single category.
func Of(category string) Selection {
	return Selection{Category: category, Active: true}
}

// Toggle returns the selection after a click on category: clicking the
// selected category clears it, anything else selects the clicked one.
func (s Selection) Toggle(category string) Selection {
	if s.Active && s.Category == category {
		return None()
	}
	return Of(category)
}

// Is reports whether category is the active selection.
func (s Selection) Is(category string) bool {
	return s.Active && s.Category == category
}

func (s Selection) String() string {
	if !s.Active {
		return "none"
	}
	return s.Category
}
