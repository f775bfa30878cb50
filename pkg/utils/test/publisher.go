package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/binder/pkg/eventstream"
)

// MockPublisher records published events. Setting Err makes every publish
// fail after the event is recorded.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ChatCompletedEvent
	closed bool

	Err error
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishChatCompleted(_ context.Context, event *eventstream.ChatCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

func (p *MockPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Events returns a copy of the events published so far.
func (p *MockPublisher) Events() []*eventstream.ChatCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.ChatCompletedEvent(nil), p.events...)
}

// Closed reports whether Close was called.
func (p *MockPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
