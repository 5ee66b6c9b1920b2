// Package protocol implements the i3bar JSON stream: the one-off header,
// the Block model, and a Writer that frames one array of blocks per tick.
package protocol

// Header is the preamble written once, before any block data. Unset
// optional fields are omitted from the wire form entirely.
type Header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events,omitempty"`
	ContSignal  *int `json:"cont_signal,omitempty"`
	StopSignal  *int `json:"stop_signal,omitempty"`
}

// DefaultHeader returns the header pulsebar advertises: protocol version 1,
// no click events, no stop/cont signals.
func DefaultHeader() Header {
	return Header{Version: 1}
}
