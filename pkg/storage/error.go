package storage

// NotFoundError is returned when a conversation doesn't exist in the store.
type NotFoundError struct {
	ConversationID string
}

func (e NotFoundError) Error() string {
	if e.ConversationID == "" {
		return "conversation not found"
	}

	return "conversation not found: " + e.ConversationID
}
