// Package assoc maintains per-persona fact pairs learned from the
// conversation, like "box = red". Facts are parsed from user queries,
// reinforced when reused, and surfaced as a compact line merged into the
// system prompt. Strength decays over time so stale facts fade out.
package assoc

import (
	"context"

	"github.com/alterego-app/alterego/store"
)

// Pair is one parsed left/right fact.
type Pair struct {
	Left  string
	Right string
}

// Service is the associative memory surface used by the chat pipeline.
type Service interface {
	// Record parses fact statements out of text and stores them,
	// reinforcing pairs that already exist.
	Record(ctx context.Context, persona, text string) error

	// Reinforce strengthens stored facts whose right-side token appears
	// in text.
	Reinforce(ctx context.Context, persona, text string) error

	// FactsLine renders the persona's most salient facts as one compact
	// line for system prompt injection. Empty when no facts are stored.
	FactsLine(ctx context.Context, persona string) (string, error)

	// Clear drops all facts for the persona.
	Clear(ctx context.Context, persona string) error
}

// AssociationStore is the slice of the store the service needs.
type AssociationStore interface {
	UpsertAssociation(ctx context.Context, upsert *store.Association) (*store.Association, error)
	ListAssociations(ctx context.Context, find *store.FindAssociation) ([]*store.Association, error)
	DeleteAssociation(ctx context.Context, delete *store.DeleteAssociation) error
}

// Config holds the associative memory tunables.
type Config struct {
	// HalfLifeDays is the strength decay half-life.
	HalfLifeDays int

	// MaxPerPersona caps stored facts per persona; the weakest are pruned
	// past it.
	MaxPerPersona int

	// FactsCharBudget bounds the rendered facts line.
	FactsCharBudget int
}

// DefaultConfig returns the default associative memory tunables.
func DefaultConfig() Config {
	return Config{
		HalfLifeDays:    14,
		MaxPerPersona:   200,
		FactsCharBudget: 160,
	}
}
