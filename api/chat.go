package api

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/binder/pkg/chatstream"
	"github.com/papercomputeco/binder/pkg/portfolio"
	"github.com/papercomputeco/binder/pkg/sse"
)

// chatAnswer is the non-streaming chat response.
type chatAnswer struct {
	Answer         string             `json:"answer"`
	Sources        []portfolio.Source `json:"sources"`
	ConversationID string             `json:"conversation_id"`
	Confidence     float64            `json:"confidence"`
}

type textFrame struct {
	Text string `json:"text"`
}

type sourcesFrame struct {
	Sources []portfolio.Source `json:"sources"`
}

type doneFrame struct {
	ConversationID string  `json:"conversation_id"`
	Confidence     float64 `json:"confidence"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// handleChat answers a chat request from the canned answers. A body that is
// not JSON is rejected with 400. An empty message is reported inside the
// stream as an error frame with status 200, the way the real backend does.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req portfolio.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	if !req.Stream {
		if err := req.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		a := s.fixtures.answerFor(req.Message)
		return c.JSON(chatAnswer{
			Answer:         a.Text,
			Sources:        nonNil(a.Sources),
			ConversationID: conversationID,
			Confidence:     a.Confidence,
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe gives per-frame backpressure: each write blocks until fasthttp
	// has taken the chunk.
	pr, pw := io.Pipe()
	go s.streamAnswer(pw, req, conversationID)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) streamAnswer(pw *io.PipeWriter, req portfolio.ChatRequest, conversationID string) {
	w := sse.NewWriter(pw)

	err := s.writeAnswer(w, req, conversationID)
	if err != nil {
		s.logger.Debug("chat stream ended early", "error", err)
	}
	_ = pw.CloseWithError(err)
}

func (s *Server) writeAnswer(w *sse.Writer, req portfolio.ChatRequest, conversationID string) error {
	if err := req.Validate(); err != nil {
		return w.WriteJSON("", errorFrame{Error: err.Error()})
	}

	a := s.fixtures.answerFor(req.Message)

	if err := w.WriteJSON(chatstream.EventSources, sourcesFrame{Sources: nonNil(a.Sources)}); err != nil {
		return err
	}

	for _, fragment := range fragments(a.Text) {
		if s.config.FragmentDelay > 0 {
			time.Sleep(s.config.FragmentDelay)
		}
		if err := w.WriteJSON(chatstream.EventContent, textFrame{Text: fragment}); err != nil {
			return err
		}
	}

	return w.WriteJSON(chatstream.EventDone, doneFrame{
		ConversationID: conversationID,
		Confidence:     a.Confidence,
	})
}

// fragments splits text after every space so that joining the fragments
// reproduces it exactly.
func fragments(text string) []string {
	var out []string
	for _, f := range strings.SplitAfter(text, " ") {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
