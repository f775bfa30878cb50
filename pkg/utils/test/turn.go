package testutils

import (
	"fmt"
	"time"

	"github.com/papercomputeco/binder/pkg/portfolio"
	"github.com/papercomputeco/binder/pkg/storage"
)

// TestEpoch is the creation time of the first turn built by NewTestTurn.
var TestEpoch = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// NewTestTurn creates a turn in conversationID. seq offsets its id and
// creation time so turns built in order sort in order.
func NewTestTurn(conversationID string, seq int) *storage.Turn {
	return &storage.Turn{
		ID:             fmt.Sprintf("%s-turn-%d", conversationID, seq),
		ConversationID: conversationID,
		Question:       fmt.Sprintf("question %d", seq),
		Answer:         fmt.Sprintf("answer %d", seq),
		Sources: []portfolio.Source{{
			DocumentID:   "doc-1",
			DocumentName: "policy.pdf",
			Page:         seq + 1,
			Snippet:      "covered perils",
			Score:        0.5,
		}},
		Confidence: 0.75,
		PropertyID: "prop-1",
		CreatedAt:  TestEpoch.Add(time.Duration(seq) * time.Minute),
	}
}
