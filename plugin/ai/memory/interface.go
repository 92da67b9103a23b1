// Package memory provides keyword-based long-term memory retrieval over
// persisted conversation turns. Retrieval is purely lexical: no embeddings,
// no network calls, deterministic for a fixed corpus and clock.
package memory

import (
	"context"
	"time"

	"github.com/alterego-app/alterego/store"
)

// Service searches a persona's long-term memory.
type Service interface {
	// Search returns past messages relevant to the query, in chronological
	// order. Storage failures degrade to an empty result, never an error:
	// losing memories must not break the conversation.
	Search(ctx context.Context, persona, query string, opts *SearchOptions) ([]*store.Message, error)
}

// SearchOptions tunes a single search call.
type SearchOptions struct {
	// MaxResults bounds the primary (scored) selection. The final result
	// may hold up to twice this once conversational neighbors are added.
	MaxResults int

	// ExcludeIDs are message IDs already present in the short-term window.
	ExcludeIDs []int32

	// Now anchors the recency boost. Zero means time.Now().
	Now time.Time
}

// Config holds the retrieval tunables.
type Config struct {
	MaxResults            int
	RecencyWindowDays     int
	NeighborWindowMinutes int
}

// DefaultConfig returns the default retrieval tunables.
func DefaultConfig() Config {
	return Config{
		MaxResults:            5,
		RecencyWindowDays:     30,
		NeighborWindowMinutes: 10,
	}
}
