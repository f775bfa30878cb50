// Package sse provides a minimal, purpose-built framing layer for the
// SSE-like (Server-Sent Events) text stream spoken by the portfolio chat
// assistant. It turns arbitrarily sized byte chunks into complete lines,
// classifies each line by its field marker, and writes frames on the server
// side.
//
// This package intentionally does NOT implement the full SSE specification:
// there is no "id:" or "retry:" handling and no reconnection.
//
// See the SSE specification for the format this loosely follows:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	eventPrefix = "event: "
	dataPrefix  = "data: "
)

// Field identifies the marker a line starts with.
type Field int

const (
	// FieldUnknown is any line that is neither an event nor a data line,
	// including blank lines and ":" comments.
	FieldUnknown Field = iota

	// FieldEvent is an "event: <name>" line.
	FieldEvent

	// FieldData is a "data: <payload>" line.
	FieldData
)

func (f Field) String() string {
	switch f {
	case FieldEvent:
		return "event"
	case FieldData:
		return "data"
	default:
		return "unknown"
	}
}

// Line is a single complete line from the stream.
type Line struct {
	// Field is the marker the line starts with.
	Field Field

	// Value is the remainder after the marker. For event lines it is
	// trimmed of surrounding whitespace; for data lines it is verbatim.
	Value string

	// Raw is the full line without its terminating newline.
	Raw string
}

// ParseLine classifies a single line (without its newline).
func ParseLine(raw string) Line {
	switch {
	case strings.HasPrefix(raw, eventPrefix):
		return Line{
			Field: FieldEvent,
			Value: strings.TrimSpace(raw[len(eventPrefix):]),
			Raw:   raw,
		}
	case strings.HasPrefix(raw, dataPrefix):
		return Line{
			Field: FieldData,
			Value: raw[len(dataPrefix):],
			Raw:   raw,
		}
	default:
		return Line{Field: FieldUnknown, Raw: raw}
	}
}
