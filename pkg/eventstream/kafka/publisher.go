// Package kafka publishes chat events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/binder/pkg/eventstream"
	"github.com/papercomputeco/binder/pkg/logger"
)

const defaultWriteTimeout = 10 * time.Second

// Config configures a Publisher.
type Config struct {
	// Brokers are the bootstrap broker addresses. Required.
	Brokers []string

	// Topic receives every event. Defaults to eventstream.EventTypeChatCompleted.
	Topic string

	// WriteTimeout bounds each publish. Zero uses 10s.
	WriteTimeout time.Duration
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes each event as one JSON message keyed by conversation id,
// so all events of a conversation land on the same partition.
type Publisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewPublisher creates a Kafka publisher. No connection is made until the
// first event is published.
func NewPublisher(c Config, log *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	topic := c.Topic
	if topic == "" {
		topic = eventstream.EventTypeChatCompleted
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w, topic, c.WriteTimeout, log), nil
}

func newPublisher(w messageWriter, topic string, timeout time.Duration, log *slog.Logger) *Publisher {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		writer:       w,
		topic:        topic,
		writeTimeout: timeout,
		logger:       log,
	}
}

// PublishChatCompleted writes event to the topic.
func (p *Publisher) PublishChatCompleted(ctx context.Context, event *eventstream.ChatCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.EventID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(event.Turn.ConversationID),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing event %s to %s: %w", event.EventID, p.topic, err)
	}

	p.logger.Debug("published chat event",
		"topic", p.topic,
		"event_id", event.EventID,
		"conversation_id", event.Turn.ConversationID,
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
