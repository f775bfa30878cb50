// Package eventstream publishes chat completion events to downstream
// consumers.
package eventstream

import "context"

// Publisher publishes chat events to an event stream backend.
type Publisher interface {
	PublishChatCompleted(ctx context.Context, event *ChatCompletedEvent) error
	Close() error
}
