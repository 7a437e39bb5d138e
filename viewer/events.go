package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned by DecodeEvent for an unrecognised type.
var ErrUnknownEvent = errors.New("unknown event type")

// wireEvent is the JSON shape posted by the page script.
type wireEvent struct {
	Type     string `json:"type"`
	Value    *int   `json:"value,omitempty"`
	Category string `json:"category,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

// DecodeEvent parses one JSON event from the page.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("viewer: decode event: %w", err)
	}

	switch w.Type {
	case AgeBoundChanged{}.Type():
		if w.Value == nil {
			return nil, fmt.Errorf("viewer: %s: missing value", w.Type)
		}
		return AgeBoundChanged{Value: *w.Value}, nil
	case CategoryClicked{}.Type():
		if w.Category == "" {
			return nil, fmt.Errorf("viewer: %s: missing category", w.Type)
		}
		return CategoryClicked{Category: w.Category}, nil
	case CategoryHovered{}.Type():
		if w.Category == "" {
			return nil, fmt.Errorf("viewer: %s: missing category", w.Type)
		}
		return CategoryHovered{Category: w.Category}, nil
	case CategoryUnhovered{}.Type():
		return CategoryUnhovered{}, nil
	case BinHovered{}.Type():
		if w.Index == nil {
			return nil, fmt.Errorf("viewer: %s: missing index", w.Type)
		}
		return BinHovered{Index: *w.Index}, nil
	case BinUnhovered{}.Type():
		return BinUnhovered{}, nil
	case Reset{}.Type():
		return Reset{}, nil
	default:
		return nil, fmt.Errorf("viewer: %q: %w", w.Type, ErrUnknownEvent)
	}
}
