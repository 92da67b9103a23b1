package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// Message model related methods.
	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	UpsertMessage(ctx context.Context, upsert *Message) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)
	CountMessages(ctx context.Context, find *FindMessage) (int, error)
	DeleteMessage(ctx context.Context, delete *DeleteMessage) error

	// PersonaMemory model related methods.
	UpsertPersonaMemory(ctx context.Context, upsert *PersonaMemory) (*PersonaMemory, error)
	GetPersonaMemory(ctx context.Context, find *FindPersonaMemory) (*PersonaMemory, error)
	ListPersonaMemories(ctx context.Context, find *FindPersonaMemory) ([]*PersonaMemory, error)
	DeletePersonaMemory(ctx context.Context, delete *DeletePersonaMemory) error

	// Association model related methods.
	UpsertAssociation(ctx context.Context, upsert *Association) (*Association, error)
	ListAssociations(ctx context.Context, find *FindAssociation) ([]*Association, error)
	DeleteAssociation(ctx context.Context, delete *DeleteAssociation) error

	// ChatSession model related methods.
	UpsertChatSession(ctx context.Context, upsert *ChatSession) (*ChatSession, error)
	ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error)
	GetChatSession(ctx context.Context, find *FindChatSession) (*ChatSession, error)
	DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error
}
