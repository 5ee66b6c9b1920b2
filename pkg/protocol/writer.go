package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// streamStart opens the infinite array of frames. Its first element is an
// empty array so that every real frame can be comma-prefixed.
const streamStart = "\n[[]\n"

// Writer serializes the header and the per-tick frames. Each call flushes
// before returning, so a consumer can parse every line as soon as it
// arrives. It is not safe for concurrent use.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes h followed by the stream opener. It must be called
// exactly once, before any WriteFrame.
func (pw *Writer) WriteHeader(h Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	if _, err := pw.w.Write(data); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := pw.w.WriteString(streamStart); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := pw.w.Flush(); err != nil {
		return fmt.Errorf("flush header: %w", err)
	}
	return nil
}

// WriteFrame writes one comma-prefixed array of blocks and a newline, then
// flushes.
func (pw *Writer) WriteFrame(blocks []Block) error {
	if blocks == nil {
		blocks = []Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if err := pw.w.WriteByte(','); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if _, err := pw.w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := pw.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := pw.w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
