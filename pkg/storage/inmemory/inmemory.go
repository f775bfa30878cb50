// Package inmemory provides a map-backed storage driver for tests and
// sessions that should not persist.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/binder/pkg/portfolio"
	"github.com/papercomputeco/binder/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex guarding the maps below
	mu sync.RWMutex

	// conversations maps a conversation id to its turns in insertion order
	conversations map[string][]*storage.Turn

	// seen holds every stored turn id for idempotent saves
	seen map[string]struct{}
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		conversations: make(map[string][]*storage.Turn),
		seen:          make(map[string]struct{}),
	}
}

// SaveTurn stores a copy of turn.
func (d *Driver) SaveTurn(_ context.Context, turn *storage.Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[turn.ID]; ok {
		return nil
	}

	t := *turn
	t.Sources = slices.Clone(turn.Sources)
	if t.Sources == nil {
		t.Sources = []portfolio.Source{}
	}
	d.seen[t.ID] = struct{}{}
	d.conversations[t.ConversationID] = append(d.conversations[t.ConversationID], &t)
	return nil
}

// Conversation returns copies of the conversation's turns, oldest first.
func (d *Driver) Conversation(_ context.Context, conversationID string) ([]*storage.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	turns, ok := d.conversations[conversationID]
	if !ok {
		return nil, storage.NotFoundError{ConversationID: conversationID}
	}

	out := make([]*storage.Turn, len(turns))
	for i, t := range turns {
		c := *t
		c.Sources = slices.Clone(t.Sources)
		out[i] = &c
	}
	return out, nil
}

// ListConversations returns a summary per conversation, most recently
// updated first.
func (d *Driver) ListConversations(_ context.Context) ([]storage.ConversationSummary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]storage.ConversationSummary, 0, len(d.conversations))
	for id, turns := range d.conversations {
		out = append(out, storage.ConversationSummary{
			ID:            id,
			Turns:         len(turns),
			FirstQuestion: turns[0].Question,
			StartedAt:     turns[0].CreatedAt,
			UpdatedAt:     turns[len(turns)-1].CreatedAt,
		})
	}

	storage.SortSummaries(out)
	return out, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
