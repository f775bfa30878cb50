// Package chatstream decodes the portfolio assistant's streaming chat
// response into content, source, completion and error callbacks.
//
// The wire format is SSE-like: optional "event: <name>" lines followed by
// "data: <payload>" lines. Each data line is dispatched on its own as soon as
// its newline arrives, classified by the most recent event name (if any) and
// by the shape of its JSON payload. Malformed frames never abort the stream.
package chatstream

import "github.com/papercomputeco/binder/pkg/portfolio"

// Event names the server uses to tag frames.
const (
	EventContent = "content"
	EventSources = "sources"
	EventDone    = "done"
)

// Handler receives decoded stream events. Callbacks are invoked
// synchronously, in stream order, on the goroutine running the decoder.
// A nil callback is skipped.
type Handler struct {
	// OnContent receives each answer fragment.
	OnContent func(text string)

	// OnSources receives the documents the answer is grounded on.
	OnSources func(sources []portfolio.Source)

	// OnDone signals completion. confidence is 0 when the server omits it.
	OnDone func(conversationID string, confidence float64)

	// OnError receives a server-side error message sent mid-stream.
	OnError func(message string)
}

func (h Handler) content(text string) {
	if h.OnContent != nil {
		h.OnContent(text)
	}
}

func (h Handler) sources(sources []portfolio.Source) {
	if h.OnSources != nil {
		h.OnSources(sources)
	}
}

func (h Handler) done(conversationID string, confidence float64) {
	if h.OnDone != nil {
		h.OnDone(conversationID, confidence)
	}
}

func (h Handler) error(message string) {
	if h.OnError != nil {
		h.OnError(message)
	}
}
