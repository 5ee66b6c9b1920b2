// Package preview renders status frames for a human at a terminal instead
// of the i3bar JSON stream. Each frame becomes one styled line.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/pulsebar/pkg/protocol"
)

// separatorGlyph stands in for the line i3bar draws between blocks.
const separatorGlyph = "│"

// pixelsPerCell approximates separator_block_width in terminal cells.
const pixelsPerCell = 10

// Writer is a FrameWriter for terminals.
type Writer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
}

// Option configures a Writer.
type Option func(*Writer)

// WithProfile forces a colour profile instead of detecting one from w.
func WithProfile(p termenv.Profile) Option {
	return func(pw *Writer) { pw.renderer.SetColorProfile(p) }
}

// NewWriter returns a Writer rendering to w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	pw := &Writer{w: w, renderer: lipgloss.NewRenderer(w)}
	for _, opt := range opts {
		opt(pw)
	}
	return pw
}

// WriteHeader prints nothing; the header only matters to a bar.
func (pw *Writer) WriteHeader(protocol.Header) error {
	return nil
}

// WriteFrame prints blocks as a single line.
func (pw *Writer) WriteFrame(blocks []protocol.Block) error {
	if _, err := fmt.Fprintln(pw.w, pw.Render(blocks)); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}

// Render returns the styled line for blocks without a trailing newline.
func (pw *Writer) Render(blocks []protocol.Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		b.WriteString(pw.renderBlock(blk))
		if i < len(blocks)-1 {
			b.WriteString(joiner(blk))
		}
	}
	return b.String()
}

func (pw *Writer) renderBlock(blk protocol.Block) string {
	style := pw.renderer.NewStyle()
	if blk.Color != nil {
		style = style.Foreground(lipgloss.Color(*blk.Color))
	}
	if blk.Background != nil {
		style = style.Background(lipgloss.Color(*blk.Background))
	}
	if blk.Urgent != nil && *blk.Urgent {
		style = style.Reverse(true)
	}
	if blk.MinWidth != nil {
		if sample, ok := blk.MinWidth.Text(); ok {
			style = style.Width(ansi.StringWidth(sample)).Align(alignment(blk.Align))
		}
	}
	return style.Render(blk.FullText)
}

// joiner returns the gap after blk: separator_block_width scaled to cells,
// with the separator glyph centred unless separator is false.
func joiner(blk protocol.Block) string {
	cells := 1
	if blk.SeparatorBlockWidth != nil && *blk.SeparatorBlockWidth/pixelsPerCell > 1 {
		cells = *blk.SeparatorBlockWidth / pixelsPerCell
	}
	if blk.Separator != nil && !*blk.Separator {
		return strings.Repeat(" ", cells)
	}
	return strings.Repeat(" ", cells) + separatorGlyph + strings.Repeat(" ", cells)
}

func alignment(align *string) lipgloss.Position {
	if align == nil {
		return lipgloss.Left
	}
	switch *align {
	case "center":
		return lipgloss.Center
	case "right":
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}
