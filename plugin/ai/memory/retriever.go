package memory

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/alterego-app/alterego/store"
)

// MessageStore is the slice of the store the retriever needs.
type MessageStore interface {
	ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error)
}

type service struct {
	store  MessageStore
	config Config
}

var _ Service = (*service)(nil)

// NewService creates a retrieval service backed by the store.
func NewService(st MessageStore, config Config) Service {
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultConfig().MaxResults
	}
	if config.RecencyWindowDays <= 0 {
		config.RecencyWindowDays = DefaultConfig().RecencyWindowDays
	}
	if config.NeighborWindowMinutes <= 0 {
		config.NeighborWindowMinutes = DefaultConfig().NeighborWindowMinutes
	}
	return &service{store: st, config: config}
}

type scoredCandidate struct {
	index int
	score float64
}

func (s *service) Search(ctx context.Context, persona, query string, opts *SearchOptions) ([]*store.Message, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.config.MaxResults
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows, err := s.store.ListMessages(ctx, &store.FindMessage{Persona: &persona})
	if err != nil {
		slog.Warn("memory search degraded to empty, storage read failed",
			"persona", persona, "error", err)
		return []*store.Message{}, nil
	}

	excluded := make(map[int32]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	// The searchable corpus: excluded rows are dropped before indexing, so a
	// question and its answer stay adjacent even when the turn between them
	// is part of the short-term context. Sorted oldest first regardless of
	// what order the store returned; index adjacency in this slice is what
	// neighbor expansion operates on.
	corpus := make([]*store.Message, 0, len(rows))
	for _, msg := range rows {
		if _, ok := excluded[msg.ID]; ok {
			continue
		}
		corpus = append(corpus, msg)
	}
	if len(corpus) == 0 {
		return []*store.Message{}, nil
	}
	sort.SliceStable(corpus, func(a, b int) bool {
		return corpus[a].CreatedTs < corpus[b].CreatedTs
	})

	keywords := ExtractKeywords(query)

	candidates := []scoredCandidate{}
	for i, msg := range corpus {
		score := similarity(query, keywords, msg.Content, msg.CreatedTs, now, s.config.RecencyWindowDays)
		if score > scoreThreshold {
			candidates = append(candidates, scoredCandidate{index: i, score: score})
		}
	}
	if len(candidates) == 0 {
		return []*store.Message{}, nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	// At least one primary hit survives even when maxResults is tiny.
	maxPrimary := maxResults
	if maxPrimary < 1 {
		maxPrimary = 1
	}
	if len(candidates) > maxPrimary {
		candidates = candidates[:maxPrimary]
	}

	hardCap := 2 * maxResults
	used := make(map[int]struct{}, hardCap)
	selected := make([]int, 0, hardCap)
	for _, c := range candidates {
		used[c.index] = struct{}{}
		selected = append(selected, c.index)
	}

	// Neighbor expansion: pull in the adjacent turn of a selected hit when
	// it is the other half of the same exchange. Expansion walks primaries
	// in score order so the best hits claim their neighbors first.
	neighborWindow := int64(s.config.NeighborWindowMinutes) * 60
	for _, c := range candidates {
		if len(selected) >= hardCap {
			break
		}
		for _, j := range []int{c.index - 1, c.index + 1} {
			if len(selected) >= hardCap {
				break
			}
			if j < 0 || j >= len(corpus) {
				continue
			}
			if _, ok := used[j]; ok {
				continue
			}
			neighbor, primary := corpus[j], corpus[c.index]
			if neighbor.Role == primary.Role {
				continue
			}
			gap := neighbor.CreatedTs - primary.CreatedTs
			if gap < 0 {
				gap = -gap
			}
			if gap > neighborWindow {
				continue
			}
			used[j] = struct{}{}
			selected = append(selected, j)
		}
	}

	// Results read as conversation, oldest first.
	sort.Ints(selected)
	results := make([]*store.Message, 0, len(selected))
	for _, i := range selected {
		results = append(results, corpus[i])
	}
	return results, nil
}
