package sse

import (
	"bytes"
	"strings"
)

// Framer reassembles complete lines from a chunked byte stream. Chunk
// boundaries are independent of line boundaries: a chunk may end in the
// middle of a line, or even in the middle of a multi-byte UTF-8 sequence.
// Bytes that have not yet been terminated by a newline stay buffered until
// a later chunk completes them or Flush is called.
//
// A Framer holds the state for exactly one stream and is not safe for
// concurrent use.
type Framer struct {
	buf []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends chunk to the buffer and returns every line completed by it,
// in stream order. The unterminated remainder is retained.
func (f *Framer) Feed(chunk []byte) []Line {
	f.buf = append(f.buf, chunk...)

	var lines []Line
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx == -1 {
			break
		}

		raw := strings.TrimSuffix(string(f.buf[:idx]), "\r")
		f.buf = f.buf[idx+1:]
		lines = append(lines, ParseLine(raw))
	}

	// Compact so a long-lived stream does not pin every chunk it has seen.
	if len(f.buf) == 0 {
		f.buf = nil
	} else if cap(f.buf) > 2*len(f.buf)+4096 {
		f.buf = append([]byte(nil), f.buf...)
	}

	return lines
}

// Flush returns the buffered, unterminated remainder as a final line and
// clears the buffer. ok is false when nothing was buffered.
func (f *Framer) Flush() (line Line, ok bool) {
	if len(f.buf) == 0 {
		return Line{}, false
	}

	raw := strings.TrimSuffix(string(f.buf), "\r")
	f.buf = nil
	return ParseLine(raw), true
}

// Pending returns the number of buffered bytes not yet forming a line.
func (f *Framer) Pending() int {
	return len(f.buf)
}
