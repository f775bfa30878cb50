package kafka

import (
	"log/slog"
	"time"
)

// NewTestPublisher wires a Publisher to an in-process writer.
func NewTestPublisher(w messageWriter, topic string, timeout time.Duration, log *slog.Logger) *Publisher {
	return newPublisher(w, topic, timeout, log)
}
