// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/binder/pkg/portfolio"
	"github.com/papercomputeco/binder/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT    NOT NULL UNIQUE,
	conversation_id TEXT    NOT NULL,
	question        TEXT    NOT NULL,
	answer          TEXT    NOT NULL,
	sources         TEXT    NOT NULL DEFAULT '[]',
	confidence      REAL    NOT NULL DEFAULT 0,
	property_id     TEXT    NOT NULL DEFAULT '',
	document_type   TEXT    NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS turns_conversation_idx ON turns (conversation_id, seq);
`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed storer.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// SaveTurn inserts turn, ignoring a duplicate id.
func (d *Driver) SaveTurn(ctx context.Context, turn *storage.Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	sources, err := json.Marshal(nonNil(turn.Sources))
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO turns
			(id, conversation_id, question, answer, sources, confidence, property_id, document_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID,
		turn.ConversationID,
		turn.Question,
		turn.Answer,
		string(sources),
		turn.Confidence,
		turn.PropertyID,
		turn.DocumentType,
		turn.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting turn %s: %w", turn.ID, err)
	}
	return nil
}

// Conversation returns the conversation's turns in the order they were saved.
func (d *Driver) Conversation(ctx context.Context, conversationID string) ([]*storage.Turn, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, conversation_id, question, answer, sources, confidence, property_id, document_type, created_at
		FROM turns
		WHERE conversation_id = ?
		ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation %s: %w", conversationID, err)
	}
	defer rows.Close()

	var turns []*storage.Turn
	for rows.Next() {
		var (
			t       storage.Turn
			sources string
			created int64
		)
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Question, &t.Answer, &sources,
			&t.Confidence, &t.PropertyID, &t.DocumentType, &created); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &t.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources of turn %s: %w", t.ID, err)
		}
		t.CreatedAt = time.Unix(0, created).UTC()
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	if len(turns) == 0 {
		return nil, storage.NotFoundError{ConversationID: conversationID}
	}
	return turns, nil
}

// ListConversations summarizes every stored conversation.
func (d *Driver) ListConversations(ctx context.Context) ([]storage.ConversationSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			t.conversation_id,
			COUNT(*),
			MIN(t.created_at),
			MAX(t.created_at),
			(SELECT f.question FROM turns f
			 WHERE f.conversation_id = t.conversation_id
			 ORDER BY f.seq LIMIT 1)
		FROM turns t
		GROUP BY t.conversation_id`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	out := []storage.ConversationSummary{}
	for rows.Next() {
		var (
			s                storage.ConversationSummary
			started, updated int64
		)
		if err := rows.Scan(&s.ID, &s.Turns, &started, &updated, &s.FirstQuestion); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		s.StartedAt = time.Unix(0, started).UTC()
		s.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	storage.SortSummaries(out)
	return out, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func nonNil(sources []portfolio.Source) []portfolio.Source {
	if sources == nil {
		return []portfolio.Source{}
	}
	return sources
}
