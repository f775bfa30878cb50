// Package storage records chat transcripts: each completed question and
// answer is a Turn, and turns sharing a conversation id form a conversation.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

// Turn is one question and the streamed answer it received.
type Turn struct {
	// ID uniquely identifies the turn.
	ID string `json:"id"`

	// ConversationID is the id the backend returned in the done frame.
	ConversationID string `json:"conversation_id"`

	Question     string             `json:"question"`
	Answer       string             `json:"answer"`
	Sources      []portfolio.Source `json:"sources"`
	Confidence   float64            `json:"confidence"`
	PropertyID   string             `json:"property_id,omitempty"`
	DocumentType string             `json:"document_type,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Validate reports whether t can be stored.
func (t *Turn) Validate() error {
	switch {
	case t == nil:
		return errors.New("cannot store nil turn")
	case t.ID == "":
		return errors.New("turn id is required")
	case t.ConversationID == "":
		return errors.New("turn conversation id is required")
	}
	return nil
}

// ConversationSummary describes a stored conversation.
type ConversationSummary struct {
	ID            string    `json:"id"`
	Turns         int       `json:"turns"`
	FirstQuestion string    `json:"first_question"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Driver defines the interface for persisting and retrieving chat
// transcripts in a storage backend. Implementations are safe for concurrent
// use.
type Driver interface {
	// SaveTurn stores a turn. Saving a turn whose ID already exists is a
	// no-op.
	SaveTurn(ctx context.Context, turn *Turn) error

	// Conversation returns the turns of a conversation, oldest first.
	// Returns NotFoundError if the conversation has no turns.
	Conversation(ctx context.Context, conversationID string) ([]*Turn, error)

	// ListConversations returns every conversation, most recently updated
	// first.
	ListConversations(ctx context.Context) ([]ConversationSummary, error)

	// Close closes the store and releases any resources.
	Close() error
}
