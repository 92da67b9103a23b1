package memory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego-app/alterego/store"
)

type stubMessageStore struct {
	messages []*store.Message
	err      error
}

func (s *stubMessageStore) ListMessages(_ context.Context, _ *store.FindMessage) ([]*store.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

func newTestService(messages []*store.Message) Service {
	return NewService(&stubMessageStore{messages: messages}, DefaultConfig())
}

func msg(id int32, role store.Role, content string, ts time.Time) *store.Message {
	return &store.Message{
		ID:        id,
		Persona:   "ALTER EGO",
		Role:      role,
		Content:   content,
		CreatedTs: ts.Unix(),
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	svc := newTestService(nil)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchStorageFailureDegradesToEmpty(t *testing.T) {
	svc := NewService(&stubMessageStore{err: errors.New("disk on fire")}, DefaultConfig())
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFindsRelevantMessages(t *testing.T) {
	now := time.Now()
	base := now.Add(-5 * 24 * time.Hour)
	corpus := []*store.Message{
		msg(1, store.RoleUser, "I went hiking in the mountains last month", base),
		msg(2, store.RoleAssistant, "That sounds wonderful, which trail did you take?", base.Add(time.Minute)),
		msg(3, store.RoleUser, "My cat knocked over a plant again", now.Add(-45*24*time.Hour)),
		msg(4, store.RoleAssistant, "Cats will be cats, maybe move the plant higher up somewhere safe", now.Add(-45*24*time.Hour).Add(time.Minute)),
	}

	svc := newTestService(corpus)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
	require.NoError(t, err)

	ids := resultIDs(results)
	assert.Contains(t, ids, int32(1))
	assert.NotContains(t, ids, int32(3))
	assert.NotContains(t, ids, int32(4))
}

func TestSearchNeighborExpansion(t *testing.T) {
	now := time.Now()
	base := now.Add(-5 * 24 * time.Hour)

	t.Run("pulls in the reply to a matched question", func(t *testing.T) {
		corpus := []*store.Message{
			msg(1, store.RoleUser, "What gear do I need for hiking?", base),
			msg(2, store.RoleAssistant, "Good boots, layered clothing, plenty of water.", base.Add(time.Minute)),
		}
		svc := newTestService(corpus)
		results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2}, resultIDs(results))
	})

	t.Run("skips same-role neighbors", func(t *testing.T) {
		corpus := []*store.Message{
			msg(1, store.RoleUser, "What gear do I need for hiking?", base),
			msg(2, store.RoleUser, "Also what about the route back home later?", base.Add(time.Minute)),
		}
		svc := newTestService(corpus)
		results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
		require.NoError(t, err)
		assert.Equal(t, []int32{1}, resultIDs(results))
	})

	t.Run("pairs across an excluded row in between", func(t *testing.T) {
		corpus := []*store.Message{
			msg(1, store.RoleUser, "What gear do I need for hiking?", base),
			msg(2, store.RoleUser, "ok", base.Add(30*time.Second)),
			msg(3, store.RoleAssistant, "Good boots, layered clothing, plenty of water.", base.Add(time.Minute)),
		}
		svc := newTestService(corpus)
		results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{
			Now:        now,
			ExcludeIDs: []int32{2},
		})
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 3}, resultIDs(results))
	})

	t.Run("skips neighbors outside the time window", func(t *testing.T) {
		corpus := []*store.Message{
			msg(1, store.RoleUser, "What gear do I need for hiking?", base),
			msg(2, store.RoleAssistant, "Good boots, layered clothing, plenty of water.", base.Add(20*time.Minute)),
		}
		svc := newTestService(corpus)
		results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
		require.NoError(t, err)
		assert.Equal(t, []int32{1}, resultIDs(results))
	})
}

func TestSearchExcludesShortTermIDs(t *testing.T) {
	now := time.Now()
	base := now.Add(-5 * 24 * time.Hour)
	corpus := []*store.Message{
		msg(1, store.RoleUser, "Planning another hiking trip soon", base),
		msg(2, store.RoleAssistant, "Exciting, where to this time?", base.Add(time.Minute)),
		msg(3, store.RoleUser, "I keep thinking about hiking", now.Add(-time.Hour)),
	}

	svc := newTestService(corpus)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{
		Now:        now,
		ExcludeIDs: []int32{2, 3},
	})
	require.NoError(t, err)

	ids := resultIDs(results)
	assert.Contains(t, ids, int32(1))
	assert.NotContains(t, ids, int32(2))
	assert.NotContains(t, ids, int32(3))
}

func TestSearchHardCap(t *testing.T) {
	now := time.Now()
	base := now.Add(-10 * 24 * time.Hour)

	corpus := []*store.Message{}
	for i := 0; i < 20; i++ {
		role := store.RoleUser
		if i%2 == 1 {
			role = store.RoleAssistant
		}
		corpus = append(corpus, msg(int32(i+1), role, "talking about hiking once more", base.Add(time.Duration(i)*time.Minute)))
	}

	svc := newTestService(corpus)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now, MaxResults: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 6)
}

func TestSearchResultsChronological(t *testing.T) {
	now := time.Now()
	corpus := []*store.Message{
		msg(1, store.RoleUser, "hiking was great", now.Add(-20*24*time.Hour)),
		msg(2, store.RoleUser, "thinking about hiking again", now.Add(-10*24*time.Hour)),
		msg(3, store.RoleUser, "booked the hiking trip", now.Add(-24*time.Hour)),
	}

	svc := newTestService(corpus)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.True(t, sort.SliceIsSorted(results, func(a, b int) bool {
		return results[a].CreatedTs < results[b].CreatedTs
	}))
}

func TestSearchReordersUnsortedStorage(t *testing.T) {
	now := time.Now()
	base := now.Add(-5 * 24 * time.Hour)

	// The store hands back the reply before the question. Results must
	// still read oldest first, and the reply must still be recognized as
	// the question's neighbor.
	corpus := []*store.Message{
		msg(2, store.RoleAssistant, "Good boots, layered clothing, plenty of water.", base.Add(time.Minute)),
		msg(1, store.RoleUser, "What gear do I need for hiking?", base),
	}

	svc := newTestService(corpus)
	results, err := svc.Search(context.Background(), "ALTER EGO", "hiking", &SearchOptions{Now: now})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, resultIDs(results))
}

func TestSearchDeterministic(t *testing.T) {
	now := time.Now()
	base := now.Add(-3 * 24 * time.Hour)
	corpus := []*store.Message{
		msg(1, store.RoleUser, "Do you remember my hiking trip to the Alps?", base),
		msg(2, store.RoleAssistant, "Of course, you loved the glacier views.", base.Add(time.Minute)),
		msg(3, store.RoleUser, "What should I cook tonight?", base.Add(time.Hour)),
	}

	svc := newTestService(corpus)
	opts := &SearchOptions{Now: now}

	first, err := svc.Search(context.Background(), "ALTER EGO", "hiking", opts)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "ALTER EGO", "hiking", opts)
	require.NoError(t, err)

	assert.Equal(t, resultIDs(first), resultIDs(second))
}

func resultIDs(results []*store.Message) []int32 {
	ids := make([]int32, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}
