// Package frame turns one tick's probe readings into the ordered blocks of
// a status line frame.
package frame

import (
	"strings"

	"gitlab.com/tinyland/lab/pulsebar/pkg/protocol"
)

// Default colours and spacing.
const (
	DefaultMediaColor          = "#97a891"
	DefaultNetworkColor        = "#91a4a8"
	DefaultSeparatorBlockWidth = 20
)

// Readings are the probe results for one tick. A nil pointer means the
// probe produced no result and its block is left out.
type Readings struct {
	Title     *string
	Addresses []string
	Time      string
	Tailscale *string
	Load      *string
}

// Style holds the per-block colours and the shared separator width. An
// empty colour leaves the block's color unset so the bar's default is used.
type Style struct {
	MediaColor          string
	NetworkColor        string
	TailscaleColor      string
	LoadColor           string
	ClockColor          string
	SeparatorBlockWidth int
}

// DefaultStyle returns the stock colours: accented media and network
// blocks, a default-coloured clock, 20px separators.
func DefaultStyle() Style {
	return Style{
		MediaColor:          DefaultMediaColor,
		NetworkColor:        DefaultNetworkColor,
		SeparatorBlockWidth: DefaultSeparatorBlockWidth,
	}
}

// Assemble builds the frame in fixed order: media (if any), network,
// tailscale (if any), load (if any), clock. Only full_text, color and
// separator_block_width are populated.
func Assemble(r Readings, s Style) []protocol.Block {
	blocks := make([]protocol.Block, 0, 5)

	if r.Title != nil {
		blocks = append(blocks, s.block(*r.Title, s.MediaColor))
	}
	blocks = append(blocks, s.block(strings.Join(r.Addresses, " "), s.NetworkColor))
	if r.Tailscale != nil {
		blocks = append(blocks, s.block(*r.Tailscale, s.TailscaleColor))
	}
	if r.Load != nil {
		blocks = append(blocks, s.block(*r.Load, s.LoadColor))
	}
	blocks = append(blocks, s.block(r.Time, s.ClockColor))

	return blocks
}

func (s Style) block(text, color string) protocol.Block {
	b := protocol.Block{
		FullText:            text,
		SeparatorBlockWidth: protocol.Int(s.SeparatorBlockWidth),
	}
	if color != "" {
		b.Color = protocol.String(color)
	}
	return b
}
