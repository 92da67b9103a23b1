package assoc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego-app/alterego/store"
)

func newTestService(st AssociationStore) Service {
	return NewService(st, DefaultConfig())
}

func TestRecordStoresParsedFacts(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "remember box is red"))

	persona := "ALTER EGO"
	stored, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "box", stored[0].Left)
	assert.Equal(t, "red", stored[0].Right)
	assert.Equal(t, 1.0, stored[0].Strength)
	assert.Equal(t, 1, stored[0].Exposures)
}

func TestRecordReinforcesExistingFact(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red"))
	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red"))

	persona := "ALTER EGO"
	stored, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 2.0, stored[0].Strength)
	assert.Equal(t, 2, stored[0].Exposures)
}

func TestRecordIgnoresPlainChat(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "how was your day today"))

	persona := "ALTER EGO"
	stored, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestReinforceTouchesUsedFacts(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red"))
	require.NoError(t, svc.Reinforce(ctx, "ALTER EGO", "hand me the red one"))

	persona := "ALTER EGO"
	stored, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 1.5, stored[0].Strength)
	assert.Equal(t, 2, stored[0].Exposures)
}

func TestFactsLine(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red; cat = dog"))

	line, err := svc.FactsLine(ctx, "ALTER EGO")
	require.NoError(t, err)
	assert.Contains(t, line, "Facts: ")
	assert.Contains(t, line, "box=red")
	assert.Contains(t, line, "cat=dog")
}

func TestFactsLineEmptyWithoutFacts(t *testing.T) {
	svc := newTestService(NewMockStore())

	line, err := svc.FactsLine(context.Background(), "ALTER EGO")
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestFactsLineRespectsBudget(t *testing.T) {
	st := NewMockStore()
	svc := NewService(st, Config{FactsCharBudget: len("Facts: box=red")})
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red; cat = dog"))

	line, err := svc.FactsLine(ctx, "ALTER EGO")
	require.NoError(t, err)
	assert.Equal(t, "Facts: box=red", line)
}

func TestFactsLineOrdersBySalience(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Now().Unix()
	stale := time.Now().Add(-60 * 24 * time.Hour).Unix()

	_, err := st.UpsertAssociation(ctx, &store.Association{
		Persona: "ALTER EGO", Left: "cat", Right: "dog",
		Strength: 1, Exposures: 1, CreatedTs: stale, LastUsedTs: stale, LastReinforcedTs: stale,
	})
	require.NoError(t, err)
	_, err = st.UpsertAssociation(ctx, &store.Association{
		Persona: "ALTER EGO", Left: "box", Right: "red",
		Strength: 1, Exposures: 1, CreatedTs: now, LastUsedTs: now, LastReinforcedTs: now,
	})
	require.NoError(t, err)

	line, err := svc.FactsLine(ctx, "ALTER EGO")
	require.NoError(t, err)
	assert.Equal(t, "Facts: box=red; cat=dog", line)
}

func TestClearDropsPersonaFacts(t *testing.T) {
	st := NewMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "ALTER EGO", "box = red"))
	require.NoError(t, svc.Record(ctx, "Muse", "sun = gold"))
	require.NoError(t, svc.Clear(ctx, "ALTER EGO"))

	persona := "ALTER EGO"
	stored, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &persona})
	require.NoError(t, err)
	assert.Empty(t, stored)

	other := "Muse"
	kept, err := st.ListAssociations(ctx, &store.FindAssociation{Persona: &other})
	require.NoError(t, err)
	require.Len(t, kept, 1)
}
