package chatstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/binder/pkg/logger"
	"github.com/papercomputeco/binder/pkg/sse"
)

// Stats counts what a Decoder has seen so far.
type Stats struct {
	// Frames is the number of data lines processed.
	Frames int

	// Malformed is the number of data lines that were not valid JSON and
	// were delivered as raw content.
	Malformed int

	// Dropped is the number of valid JSON data lines that matched no known
	// shape and were discarded.
	Dropped int
}

// Decoder turns one chat response stream into Handler callbacks.
//
// A Decoder owns the partial-line buffer and current event name for exactly
// one stream. It is not safe for concurrent use; concurrent chats each need
// their own Decoder.
type Decoder struct {
	handler Handler
	framer  *sse.Framer

	// eventName is the most recent "event:" marker. It applies only to the
	// next data line and is cleared once that line is dispatched.
	eventName string

	discardTrailing bool
	readSize        int
	stats           Stats
	logger          *slog.Logger
}

// New returns a Decoder that dispatches to h.
func New(h Handler, opts ...Option) *Decoder {
	d := &Decoder{
		handler:  h,
		framer:   sse.NewFramer(),
		readSize: defaultReadSize,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads r to completion with a new Decoder. See (*Decoder).Decode.
func Decode(ctx context.Context, r io.Reader, h Handler, opts ...Option) error {
	return New(h, opts...).Decode(ctx, r)
}

// Decode reads chunks from r until end of input, dispatching every complete
// line as it arrives, then calls Finish. It returns nil at end of input
// whether or not the stream signalled completion; callers must not treat a
// nil error as a successful answer.
//
// When ctx is cancelled Decode stops and returns ctx.Err(). If r is an
// io.Closer it is closed on cancellation so that a blocked Read unwinds.
// Buffered partial lines are not dispatched after cancellation.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) error {
	closer, _ := r.(io.Closer)
	if closer != nil {
		stop := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer stop()
	}

	cancelled := func() error {
		if closer != nil {
			_ = closer.Close()
		}
		return ctx.Err()
	}

	buf := make([]byte, d.readSize)
	for {
		if ctx.Err() != nil {
			return cancelled()
		}

		n, err := r.Read(buf)
		if n > 0 {
			d.Feed(buf[:n])
		}

		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return cancelled()
		}
		if errors.Is(err, io.EOF) {
			d.Finish()
			return nil
		}
		return fmt.Errorf("reading chat stream: %w", err)
	}
}

// Feed decodes one chunk. Complete lines are dispatched immediately, in
// order; an incomplete trailing line is buffered for the next chunk.
func (d *Decoder) Feed(chunk []byte) {
	for _, line := range d.framer.Feed(chunk) {
		d.handleLine(line)
	}
}

// Finish signals end of stream. A buffered line that never received its
// newline is dispatched as a final frame, unless the Decoder was created
// WithDiscardTrailing.
func (d *Decoder) Finish() {
	line, ok := d.framer.Flush()
	if !ok {
		return
	}

	if d.discardTrailing {
		d.logger.Debug("discarding unterminated trailing line", "line", line.Raw)
		return
	}
	d.handleLine(line)
}

// Stats returns counters for the stream decoded so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) handleLine(line sse.Line) {
	switch line.Field {
	case sse.FieldEvent:
		d.eventName = line.Value
	case sse.FieldData:
		d.handleData(line.Value)
	default:
		// blank separators, comments and unknown fields carry nothing
	}
}

// handleData classifies a single data payload and dispatches it. The first
// matching rule wins:
//
//  1. event "content" with a text member   -> OnContent(text)
//  2. event "sources", or a bare array      -> OnSources(list)
//  3. event "done", or a conversation_id    -> OnDone(id, confidence)
//  4. an error member                       -> OnError(error)
//  5. a text member                         -> OnContent(text)
//
// Anything else is dropped. Payloads that are not JSON are delivered as raw
// content. The event name is cleared afterwards on every path.
func (d *Decoder) handleData(data string) {
	event := d.eventName
	d.eventName = ""
	d.stats.Frames++

	p, ok := parsePayload(data)
	if !ok {
		d.stats.Malformed++
		d.handler.content(data)
		return
	}

	switch {
	case event == EventContent && p.has(fieldText):
		d.handler.content(p.str(fieldText))

	case event == EventSources || p.array:
		sources, skipped := p.sourceList()
		if skipped > 0 {
			d.logger.Debug("skipped undecodable sources", "skipped", skipped)
		}
		d.handler.sources(sources)

	case event == EventDone || p.has(fieldConversationID):
		d.handler.done(p.str(fieldConversationID), p.confidence())

	case p.has(fieldError):
		d.handler.error(p.str(fieldError))

	case p.has(fieldText):
		d.handler.content(p.str(fieldText))

	default:
		d.stats.Dropped++
		d.logger.Debug("dropping unrecognized frame", "event", event, "data", data)
	}
}
