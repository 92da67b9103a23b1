// Package session manages per-persona chat sessions and the persisted
// conversation transcript. Each persona has exactly one active session;
// clearing memory replaces the session UID so short-term exclusion sets can
// never leak across sessions.
package session

import (
	"context"

	"github.com/alterego-app/alterego/store"
)

// Manager is the session lifecycle and transcript persistence service.
type Manager interface {
	// ActiveSession returns the persona's current session, creating one
	// with a fresh UID if none exists.
	ActiveSession(ctx context.Context, persona string) (*store.ChatSession, error)

	// Transcript loads the persona's persisted transcript, oldest first.
	// A persona with no memory record yields an empty transcript.
	Transcript(ctx context.Context, persona string) ([]store.TranscriptEntry, error)

	// SaveTranscript persists the whole transcript for the persona. Entries
	// without a message ID are also written as individual message rows so
	// they become retrievable, and receive their row ID back.
	SaveTranscript(ctx context.Context, persona string, transcript []store.TranscriptEntry) error

	// ClearMemory erases the persona's transcript and message rows and
	// activates a fresh session. Other personas are untouched.
	ClearMemory(ctx context.Context, persona string) (*store.ChatSession, error)

	// OnMemoryChange registers an observer invoked with the persona name
	// after every transcript save or memory clear.
	OnMemoryChange(fn func(persona string))

	// Acquire takes the persona's send lock and returns its release func.
	// At most one send pipeline runs per persona at a time.
	Acquire(persona string) func()
}

// Store is the slice of the store the manager needs.
type Store interface {
	CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error)
	DeleteMessage(ctx context.Context, delete *store.DeleteMessage) error
	UpsertPersonaMemory(ctx context.Context, upsert *store.PersonaMemory) (*store.PersonaMemory, error)
	GetPersonaMemory(ctx context.Context, find *store.FindPersonaMemory) (*store.PersonaMemory, error)
	DeletePersonaMemory(ctx context.Context, delete *store.DeletePersonaMemory) error
	UpsertChatSession(ctx context.Context, upsert *store.ChatSession) (*store.ChatSession, error)
	GetChatSession(ctx context.Context, find *store.FindChatSession) (*store.ChatSession, error)
	DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error
}
