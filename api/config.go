// Package api provides a mock portfolio backend: the read endpoints the
// client uses, served from embedded fixtures, and a streaming chat endpoint
// that speaks the event-tagged chat protocol.
package api

import "time"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// FragmentDelay is the pause between streamed answer fragments. Zero
	// streams as fast as the client reads.
	FragmentDelay time.Duration
}
