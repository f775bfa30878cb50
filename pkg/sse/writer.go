package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Writer writes frames in the chat wire format:
//
//	event: <name>
//	data: <payload>
//	<blank line>
//
// The event line is omitted when name is empty.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes frames to w. If w also implements
// http.Flusher or a `Flush() error` method, it is flushed after each frame.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes a single frame. data must not contain a newline; a
// payload spanning lines would be split into separate data lines, which the
// chat decoder treats as independent frames.
func (w *Writer) WriteEvent(name, data string) error {
	if strings.ContainsAny(data, "\r\n") {
		return fmt.Errorf("sse: data for event %q contains a newline", name)
	}

	var b strings.Builder
	if name != "" {
		b.WriteString(eventPrefix)
		b.WriteString(name)
		b.WriteByte('\n')
	}
	b.WriteString(dataPrefix)
	b.WriteString(data)
	b.WriteString("\n\n")

	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}

	return w.flush()
}

// WriteJSON marshals v and writes it as a single frame.
func (w *Writer) WriteJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshaling %q payload: %w", name, err)
	}
	return w.WriteEvent(name, string(data))
}

func (w *Writer) flush() error {
	switch f := w.w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}
