package session

import (
	"context"
	"sync"

	"github.com/lithammer/shortuuid/v4"

	"github.com/alterego-app/alterego/store"
)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu        sync.Mutex
	nextID    int32
	messages  []*store.Message
	memories  map[string]*store.PersonaMemory
	sessions  map[string]*store.ChatSession
	CreateErr error
}

var _ Store = (*MockStore)(nil)

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		nextID:   1,
		memories: map[string]*store.PersonaMemory{},
		sessions: map[string]*store.ChatSession{},
	}
}

// Messages returns a copy of all stored message rows.
func (s *MockStore) Messages() []*store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *MockStore) CreateMessage(_ context.Context, create *store.Message) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	create.ID = s.nextID
	s.nextID++
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	s.messages = append(s.messages, create)
	return create, nil
}

func (s *MockStore) DeleteMessage(_ context.Context, delete *store.DeleteMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if delete.Persona != nil && m.Persona == *delete.Persona {
			continue
		}
		if delete.ID != nil && m.ID == *delete.ID {
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return nil
}

func (s *MockStore) UpsertPersonaMemory(_ context.Context, upsert *store.PersonaMemory) (*store.PersonaMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[upsert.Persona] = upsert
	return upsert, nil
}

func (s *MockStore) GetPersonaMemory(_ context.Context, find *store.FindPersonaMemory) (*store.PersonaMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find.Persona == nil {
		return nil, nil
	}
	return s.memories[*find.Persona], nil
}

func (s *MockStore) DeletePersonaMemory(_ context.Context, del *store.DeletePersonaMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memories, del.Persona)
	return nil
}

func (s *MockStore) UpsertChatSession(_ context.Context, upsert *store.ChatSession) (*store.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[upsert.Persona] = upsert
	return upsert, nil
}

func (s *MockStore) GetChatSession(_ context.Context, find *store.FindChatSession) (*store.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find.Persona == nil {
		return nil, nil
	}
	return s.sessions[*find.Persona], nil
}

func (s *MockStore) DeleteChatSession(_ context.Context, del *store.DeleteChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, del.Persona)
	return nil
}
