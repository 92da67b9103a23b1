package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/store"
)

// fakeDriver is an in-memory store.Driver for handler tests that touch the
// store directly instead of going through the session manager.
type fakeDriver struct {
	mu           sync.Mutex
	nextID       int32
	messages     []*store.Message
	associations []*store.Association
	memories     map[string]*store.PersonaMemory
	sessions     map[string]*store.ChatSession
}

var _ store.Driver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		nextID:   1,
		memories: map[string]*store.PersonaMemory{},
		sessions: map[string]*store.ChatSession{},
	}
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) Migrate(_ context.Context) error { return nil }

func (d *fakeDriver) CreateMessage(_ context.Context, create *store.Message) (*store.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = d.nextID
	d.nextID++
	d.messages = append(d.messages, create)
	return create, nil
}

func (d *fakeDriver) UpsertMessage(_ context.Context, upsert *store.Message) (*store.Message, error) {
	return d.CreateMessage(context.Background(), upsert)
}

func (d *fakeDriver) ListMessages(_ context.Context, find *store.FindMessage) ([]*store.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.Message{}
	for _, m := range d.messages {
		if find.Persona != nil && m.Persona != *find.Persona {
			continue
		}
		list = append(list, m)
	}
	return list, nil
}

func (d *fakeDriver) CountMessages(ctx context.Context, find *store.FindMessage) (int, error) {
	list, err := d.ListMessages(ctx, find)
	return len(list), err
}

func (d *fakeDriver) DeleteMessage(_ context.Context, del *store.DeleteMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.messages[:0]
	for _, m := range d.messages {
		if del.Persona != nil && m.Persona == *del.Persona {
			continue
		}
		if del.ID != nil && m.ID == *del.ID {
			continue
		}
		kept = append(kept, m)
	}
	d.messages = kept
	return nil
}

func (d *fakeDriver) UpsertPersonaMemory(_ context.Context, upsert *store.PersonaMemory) (*store.PersonaMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memories[upsert.Persona] = upsert
	return upsert, nil
}

func (d *fakeDriver) GetPersonaMemory(_ context.Context, find *store.FindPersonaMemory) (*store.PersonaMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if find.Persona == nil {
		return nil, nil
	}
	return d.memories[*find.Persona], nil
}

func (d *fakeDriver) ListPersonaMemories(_ context.Context, _ *store.FindPersonaMemory) ([]*store.PersonaMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.PersonaMemory{}
	for _, m := range d.memories {
		list = append(list, m)
	}
	return list, nil
}

func (d *fakeDriver) DeletePersonaMemory(_ context.Context, del *store.DeletePersonaMemory) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.memories, del.Persona)
	return nil
}

func (d *fakeDriver) UpsertAssociation(_ context.Context, upsert *store.Association) (*store.Association, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.associations {
		if a.Persona == upsert.Persona && a.Left == upsert.Left && a.Right == upsert.Right {
			*a = *upsert
			return a, nil
		}
	}
	upsert.ID = d.nextID
	d.nextID++
	d.associations = append(d.associations, upsert)
	return upsert, nil
}

func (d *fakeDriver) ListAssociations(_ context.Context, find *store.FindAssociation) ([]*store.Association, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.Association{}
	for _, a := range d.associations {
		if find.Persona != nil && a.Persona != *find.Persona {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

func (d *fakeDriver) DeleteAssociation(_ context.Context, del *store.DeleteAssociation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.associations[:0]
	for _, a := range d.associations {
		if del.Persona != nil && a.Persona == *del.Persona {
			continue
		}
		if del.ID != nil && a.ID == *del.ID {
			continue
		}
		kept = append(kept, a)
	}
	d.associations = kept
	return nil
}

func (d *fakeDriver) UpsertChatSession(_ context.Context, upsert *store.ChatSession) (*store.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[upsert.Persona] = upsert
	return upsert, nil
}

func (d *fakeDriver) ListChatSessions(_ context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.ChatSession{}
	for _, sess := range d.sessions {
		if find.Persona != nil && sess.Persona != *find.Persona {
			continue
		}
		list = append(list, sess)
	}
	return list, nil
}

func (d *fakeDriver) GetChatSession(ctx context.Context, find *store.FindChatSession) (*store.ChatSession, error) {
	list, err := d.ListChatSessions(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (d *fakeDriver) DeleteChatSession(_ context.Context, del *store.DeleteChatSession) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, del.Persona)
	return nil
}

func TestFactoryResetClearsSessionOnlyPersonas(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	st := store.New(drv, &profile.Profile{Mode: "dev"})

	// One persona with the full record set, one that only has a session.
	_, err := st.UpsertPersonaMemory(ctx, &store.PersonaMemory{Persona: "alter-ego", Transcript: "[]"})
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, &store.Message{Persona: "alter-ego", Role: store.RoleUser, Content: "hello"})
	require.NoError(t, err)
	_, err = st.UpsertChatSession(ctx, &store.ChatSession{Persona: "alter-ego", UID: "uid-1"})
	require.NoError(t, err)
	_, err = st.UpsertChatSession(ctx, &store.ChatSession{Persona: "muse", UID: "uid-2"})
	require.NoError(t, err)
	_, err = st.UpsertAssociation(ctx, &store.Association{Persona: "alter-ego", Left: "box", Right: "red", Strength: 1, Exposures: 1})
	require.NoError(t, err)

	api := newTestAPIWithStore(&fakeLLM{reply: "hi"}, st)
	rec := doRequest(t, api, http.MethodPost, "/api/v1/factory-reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := map[string]int{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["personasReset"])

	sessions, err := st.ListChatSessions(ctx, &store.FindChatSession{})
	require.NoError(t, err)
	assert.Empty(t, sessions)

	messages, err := st.ListMessages(ctx, &store.FindMessage{})
	require.NoError(t, err)
	assert.Empty(t, messages)

	memories, err := st.ListPersonaMemories(ctx, &store.FindPersonaMemory{})
	require.NoError(t, err)
	assert.Empty(t, memories)

	associations, err := st.ListAssociations(ctx, &store.FindAssociation{})
	require.NoError(t, err)
	assert.Empty(t, associations)
}
