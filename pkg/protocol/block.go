package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Block is one segment of the bar for a single tick. FullText is always
// serialized; every other field is a display hint that is omitted when nil.
type Block struct {
	FullText            string    `json:"full_text"`
	ShortText           *string   `json:"short_text,omitempty"`
	Color               *string   `json:"color,omitempty"`
	Background          *string   `json:"background,omitempty"`
	Border              *string   `json:"border,omitempty"`
	BorderTop           *int      `json:"border_top,omitempty"`
	BorderRight         *int      `json:"border_right,omitempty"`
	BorderBottom        *int      `json:"border_bottom,omitempty"`
	BorderLeft          *int      `json:"border_left,omitempty"`
	MinWidth            *MinWidth `json:"min_width,omitempty"`
	Align               *string   `json:"align,omitempty"`
	Name                *string   `json:"name,omitempty"`
	Instance            *string   `json:"instance,omitempty"`
	Urgent              *bool     `json:"urgent,omitempty"`
	Separator           *bool     `json:"separator,omitempty"`
	SeparatorBlockWidth *int      `json:"separator_block_width,omitempty"`
	Markup              *string   `json:"markup,omitempty"`
}

// String returns a pointer to s, for populating optional Block fields.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// MinWidth is either a width in pixels or a sample string whose rendered
// width is used. It serializes as a bare JSON number or string.
type MinWidth struct {
	pixels int
	text   string
	isText bool
}

// MinWidthPixels returns a MinWidth holding a pixel count.
func MinWidthPixels(px int) *MinWidth {
	return &MinWidth{pixels: px}
}

// MinWidthText returns a MinWidth holding a sample string.
func MinWidthText(s string) *MinWidth {
	return &MinWidth{text: s, isText: true}
}

// Pixels returns the pixel variant and whether it is the populated one.
func (m MinWidth) Pixels() (int, bool) {
	return m.pixels, !m.isText
}

// Text returns the string variant and whether it is the populated one.
func (m MinWidth) Text() (string, bool) {
	return m.text, m.isText
}

// MarshalJSON implements json.Marshaler.
func (m MinWidth) MarshalJSON() ([]byte, error) {
	if m.isText {
		return json.Marshal(m.text)
	}
	return []byte(strconv.Itoa(m.pixels)), nil
}

// UnmarshalJSON accepts either representation.
func (m *MinWidth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MinWidth{text: s, isText: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("min_width: want integer or string, got %s", data)
	}
	*m = MinWidth{pixels: n}
	return nil
}
