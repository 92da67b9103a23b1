package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego-app/alterego/store"
)

func TestActiveSessionCreatesOnFirstUse(t *testing.T) {
	m := NewManager(NewMockStore())
	ctx := context.Background()

	session, err := m.ActiveSession(ctx, "ALTER EGO")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.UID)

	again, err := m.ActiveSession(ctx, "ALTER EGO")
	require.NoError(t, err)
	assert.Equal(t, session.UID, again.UID)
}

func TestActiveSessionIsolatedPerPersona(t *testing.T) {
	m := NewManager(NewMockStore())
	ctx := context.Background()

	a, err := m.ActiveSession(ctx, "ALTER EGO")
	require.NoError(t, err)
	b, err := m.ActiveSession(ctx, "Muse")
	require.NoError(t, err)

	assert.NotEqual(t, a.UID, b.UID)
}

func TestSaveTranscriptPersistsMessageRows(t *testing.T) {
	st := NewMockStore()
	m := NewManager(st)
	ctx := context.Background()
	now := time.Now().Unix()

	transcript := []store.TranscriptEntry{
		{Role: "user", Content: "hello", Timestamp: now},
		{Role: "assistant", Content: "hi there", Timestamp: now + 1},
	}
	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", transcript))

	rows := st.Messages()
	require.Len(t, rows, 2)
	assert.Equal(t, store.RoleUser, rows[0].Role)
	assert.Equal(t, store.RoleAssistant, rows[1].Role)

	// Row IDs flow back into the transcript.
	assert.NotZero(t, transcript[0].MessageID)
	assert.NotZero(t, transcript[1].MessageID)

	loaded, err := m.Transcript(ctx, "ALTER EGO")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "hello", loaded[0].Content)
}

func TestSaveTranscriptSkipsAlreadyPersistedRows(t *testing.T) {
	st := NewMockStore()
	m := NewManager(st)
	ctx := context.Background()
	now := time.Now().Unix()

	transcript := []store.TranscriptEntry{{Role: "user", Content: "hello", Timestamp: now}}
	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", transcript))
	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", transcript))

	assert.Len(t, st.Messages(), 1)
}

func TestClearMemoryStartsFreshSession(t *testing.T) {
	st := NewMockStore()
	m := NewManager(st)
	ctx := context.Background()
	now := time.Now().Unix()

	before, err := m.ActiveSession(ctx, "ALTER EGO")
	require.NoError(t, err)
	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", []store.TranscriptEntry{
		{Role: "user", Content: "remember this", Timestamp: now},
	}))

	after, err := m.ClearMemory(ctx, "ALTER EGO")
	require.NoError(t, err)

	assert.NotEqual(t, before.UID, after.UID)
	assert.Empty(t, st.Messages())

	transcript, err := m.Transcript(ctx, "ALTER EGO")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestClearMemoryLeavesOtherPersonasAlone(t *testing.T) {
	st := NewMockStore()
	m := NewManager(st)
	ctx := context.Background()
	now := time.Now().Unix()

	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", []store.TranscriptEntry{
		{Role: "user", Content: "alter ego memory", Timestamp: now},
	}))
	require.NoError(t, m.SaveTranscript(ctx, "Muse", []store.TranscriptEntry{
		{Role: "user", Content: "muse memory", Timestamp: now},
	}))

	_, err := m.ClearMemory(ctx, "ALTER EGO")
	require.NoError(t, err)

	museTranscript, err := m.Transcript(ctx, "Muse")
	require.NoError(t, err)
	assert.Len(t, museTranscript, 1)

	rows := st.Messages()
	require.Len(t, rows, 1)
	assert.Equal(t, "Muse", rows[0].Persona)
}

func TestOnMemoryChangeObserver(t *testing.T) {
	m := NewManager(NewMockStore())
	ctx := context.Background()

	changed := []string{}
	m.OnMemoryChange(func(persona string) {
		changed = append(changed, persona)
	})

	require.NoError(t, m.SaveTranscript(ctx, "ALTER EGO", []store.TranscriptEntry{
		{Role: "user", Content: "hello", Timestamp: time.Now().Unix()},
	}))
	_, err := m.ClearMemory(ctx, "ALTER EGO")
	require.NoError(t, err)

	assert.Equal(t, []string{"ALTER EGO", "ALTER EGO"}, changed)
}

func TestAcquireSerializesPerPersona(t *testing.T) {
	m := NewManager(NewMockStore())

	release := m.Acquire("ALTER EGO")

	acquired := make(chan struct{})
	go func() {
		r := m.Acquire("ALTER EGO")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the first holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	// A different persona is not blocked.
	otherRelease := m.Acquire("Muse")
	otherRelease()

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after release")
	}
}
