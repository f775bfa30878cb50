package storage

import (
	"slices"
	"strings"
)

// SortSummaries orders summaries most recently updated first, breaking ties
// by id so the order is stable across drivers.
func SortSummaries(summaries []ConversationSummary) {
	slices.SortFunc(summaries, func(a, b ConversationSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
