package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/alterego-app/alterego/store"
)

type manager struct {
	store Store

	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	observers []func(persona string)
}

var _ Manager = (*manager)(nil)

// NewManager creates a session manager backed by the store.
func NewManager(st Store) Manager {
	return &manager{
		store: st,
		locks: map[string]*sync.Mutex{},
	}
}

func (m *manager) ActiveSession(ctx context.Context, persona string) (*store.ChatSession, error) {
	session, err := m.store.GetChatSession(ctx, &store.FindChatSession{Persona: &persona})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chat session")
	}
	if session != nil {
		return session, nil
	}

	now := time.Now().Unix()
	session, err = m.store.UpsertChatSession(ctx, &store.ChatSession{
		Persona:   persona,
		UID:       shortuuid.New(),
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat session")
	}
	return session, nil
}

func (m *manager) Transcript(ctx context.Context, persona string) ([]store.TranscriptEntry, error) {
	memory, err := m.store.GetPersonaMemory(ctx, &store.FindPersonaMemory{Persona: &persona})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load persona memory")
	}
	if memory == nil || memory.Transcript == "" {
		return []store.TranscriptEntry{}, nil
	}

	transcript := []store.TranscriptEntry{}
	if err := json.Unmarshal([]byte(memory.Transcript), &transcript); err != nil {
		return nil, errors.Wrap(err, "failed to decode transcript")
	}
	return transcript, nil
}

func (m *manager) SaveTranscript(ctx context.Context, persona string, transcript []store.TranscriptEntry) error {
	// New turns become message rows first so the stored transcript carries
	// their row IDs. Those IDs feed the short-term exclusion set later.
	for i := range transcript {
		if transcript[i].MessageID != 0 {
			continue
		}
		role := store.RoleUser
		if transcript[i].Role == "assistant" {
			role = store.RoleAssistant
		}
		created, err := m.store.CreateMessage(ctx, &store.Message{
			UID:       shortuuid.New(),
			Persona:   persona,
			Role:      role,
			Content:   transcript[i].Content,
			CreatedTs: transcript[i].Timestamp,
		})
		if err != nil {
			return errors.Wrap(err, "failed to persist message row")
		}
		transcript[i].MessageID = created.ID
	}

	data, err := json.Marshal(transcript)
	if err != nil {
		return errors.Wrap(err, "failed to encode transcript")
	}
	if _, err := m.store.UpsertPersonaMemory(ctx, &store.PersonaMemory{
		Persona:        persona,
		Transcript:     string(data),
		LastAccessedTs: time.Now().Unix(),
	}); err != nil {
		return errors.Wrap(err, "failed to persist transcript")
	}

	m.notify(persona)
	return nil
}

func (m *manager) ClearMemory(ctx context.Context, persona string) (*store.ChatSession, error) {
	if err := m.store.DeletePersonaMemory(ctx, &store.DeletePersonaMemory{Persona: persona}); err != nil {
		return nil, errors.Wrap(err, "failed to delete persona memory")
	}
	if err := m.store.DeleteMessage(ctx, &store.DeleteMessage{Persona: &persona}); err != nil {
		return nil, errors.Wrap(err, "failed to delete message rows")
	}

	now := time.Now().Unix()
	session, err := m.store.UpsertChatSession(ctx, &store.ChatSession{
		Persona:   persona,
		UID:       shortuuid.New(),
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start fresh session")
	}

	m.notify(persona)
	return session, nil
}

func (m *manager) OnMemoryChange(fn func(persona string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *manager) Acquire(persona string) func() {
	m.mu.Lock()
	lock, ok := m.locks[persona]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[persona] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (m *manager) notify(persona string) {
	m.mu.Lock()
	observers := make([]func(string), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(persona)
	}
}
