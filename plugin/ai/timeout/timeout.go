// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// CompletionTimeout is the timeout for a single chat completion call.
	CompletionTimeout = 30 * time.Second

	// RetrievalTimeout bounds the long-term memory search. Retrieval is
	// local scoring over stored rows, so this only guards pathological
	// corpus sizes.
	RetrievalTimeout = 5 * time.Second

	// PersistTimeout is the timeout for writing a completed exchange.
	PersistTimeout = 10 * time.Second

	// ShutdownTimeout is the grace period for draining the HTTP server.
	ShutdownTimeout = 10 * time.Second
)
