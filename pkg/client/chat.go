package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/papercomputeco/binder/pkg/chatstream"
	"github.com/papercomputeco/binder/pkg/portfolio"
)

// StreamChat sends req to the chat endpoint and decodes the streamed answer
// into h as it arrives.
//
// A non-2xx response is returned as a *StatusError before decoding starts.
// Otherwise StreamChat returns nil at end of stream whether or not OnDone
// fired; protocol-level errors arrive through OnError. Cancelling ctx aborts
// the read and returns ctx.Err(). The request is never retried.
func (c *Client) StreamChat(ctx context.Context, req portfolio.ChatRequest, h chatstream.Handler) error {
	if err := req.Validate(); err != nil {
		return err
	}
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling chat request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathChat, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("sending chat request",
		"request_id", requestID,
		"conversation_id", req.ConversationID,
		"property_id", req.PropertyID,
		"document_type", req.DocumentType,
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending chat request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(http.MethodPost, PathChat, resp)
	}
	defer resp.Body.Close()

	dec := chatstream.New(h, chatstream.WithLogger(c.logger))
	if err := dec.Decode(ctx, resp.Body); err != nil {
		return err
	}

	stats := dec.Stats()
	c.logger.Debug("chat stream finished",
		"request_id", requestID,
		"frames", stats.Frames,
		"malformed", stats.Malformed,
		"dropped", stats.Dropped,
	)
	return nil
}
