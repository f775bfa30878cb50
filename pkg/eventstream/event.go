package eventstream

import (
	"time"

	"github.com/papercomputeco/binder/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeChatCompleted is emitted after a chat turn is recorded.
	EventTypeChatCompleted = "binder.chat.completed"
)

// ChatCompletedEvent is a transport-neutral event payload for a recorded
// chat turn.
type ChatCompletedEvent struct {
	SchemaVersion  int          `json:"schema_version"`
	EventType      string       `json:"event_type"`
	EventID        string       `json:"event_id"`
	EmittedAt      time.Time    `json:"emitted_at"`
	OrganizationID string       `json:"organization_id,omitempty"`
	Stream         StreamMeta   `json:"stream"`
	Turn           storage.Turn `json:"turn"`
}

// StreamMeta captures how the answer arrived.
type StreamMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Fragments   int       `json:"fragments"`
}
