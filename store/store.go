package store

import (
	"context"
	"time"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache for persona memory records. Whole-record reads dominate the
	// send pipeline, so a short TTL front pays off; every write path
	// invalidates the persona's entry.
	personaMemoryCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:             driver,
		profile:            profile,
		personaMemoryCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.personaMemoryCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateMessage(ctx context.Context, create *Message) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) UpsertMessage(ctx context.Context, upsert *Message) (*Message, error) {
	return s.driver.UpsertMessage(ctx, upsert)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

func (s *Store) CountMessages(ctx context.Context, find *FindMessage) (int, error) {
	return s.driver.CountMessages(ctx, find)
}

func (s *Store) DeleteMessage(ctx context.Context, delete *DeleteMessage) error {
	return s.driver.DeleteMessage(ctx, delete)
}

func (s *Store) UpsertPersonaMemory(ctx context.Context, upsert *PersonaMemory) (*PersonaMemory, error) {
	memory, err := s.driver.UpsertPersonaMemory(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.personaMemoryCache.Set(ctx, memory.Persona, memory)
	return memory, nil
}

func (s *Store) GetPersonaMemory(ctx context.Context, find *FindPersonaMemory) (*PersonaMemory, error) {
	if find.Persona != nil {
		if cached, ok := s.personaMemoryCache.Get(ctx, *find.Persona); ok {
			if memory, ok := cached.(*PersonaMemory); ok {
				return memory, nil
			}
		}
	}

	memory, err := s.driver.GetPersonaMemory(ctx, find)
	if err != nil {
		return nil, err
	}
	if memory != nil {
		s.personaMemoryCache.Set(ctx, memory.Persona, memory)
	}
	return memory, nil
}

func (s *Store) ListPersonaMemories(ctx context.Context, find *FindPersonaMemory) ([]*PersonaMemory, error) {
	return s.driver.ListPersonaMemories(ctx, find)
}

func (s *Store) DeletePersonaMemory(ctx context.Context, delete *DeletePersonaMemory) error {
	if err := s.driver.DeletePersonaMemory(ctx, delete); err != nil {
		return err
	}
	s.personaMemoryCache.Delete(ctx, delete.Persona)
	return nil
}

func (s *Store) UpsertAssociation(ctx context.Context, upsert *Association) (*Association, error) {
	return s.driver.UpsertAssociation(ctx, upsert)
}

func (s *Store) ListAssociations(ctx context.Context, find *FindAssociation) ([]*Association, error) {
	return s.driver.ListAssociations(ctx, find)
}

func (s *Store) DeleteAssociation(ctx context.Context, delete *DeleteAssociation) error {
	return s.driver.DeleteAssociation(ctx, delete)
}

func (s *Store) UpsertChatSession(ctx context.Context, upsert *ChatSession) (*ChatSession, error) {
	return s.driver.UpsertChatSession(ctx, upsert)
}

func (s *Store) ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx, find)
}

func (s *Store) GetChatSession(ctx context.Context, find *FindChatSession) (*ChatSession, error) {
	return s.driver.GetChatSession(ctx, find)
}

func (s *Store) DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error {
	return s.driver.DeleteChatSession(ctx, delete)
}
