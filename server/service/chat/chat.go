// Package chat implements the send pipeline: persist the user turn, retrieve
// long-term memories, assemble the prompt, call the completion provider, and
// persist the full exchange.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/plugin/ai"
	"github.com/alterego-app/alterego/plugin/ai/assoc"
	aicontext "github.com/alterego-app/alterego/plugin/ai/context"
	"github.com/alterego-app/alterego/plugin/ai/memory"
	"github.com/alterego-app/alterego/plugin/ai/session"
	"github.com/alterego-app/alterego/plugin/ai/timeout"
	"github.com/alterego-app/alterego/store"
)

// ErrCompletionUnavailable marks a failed completion call. The user turn is
// already persisted when this is returned; only the reply is missing.
var ErrCompletionUnavailable = errors.New("completion unavailable")

// Exchange is the outcome of one send.
type Exchange struct {
	SessionUID   string
	Reply        string
	MemoriesUsed int
	Transcript   []store.TranscriptEntry

	// Warning is set when the reply was produced but persisting the
	// exchange failed, so the caller can tell the user the turn may be
	// missing from memory.
	Warning string
}

// persistWarning is surfaced on the Exchange when a transcript write fails
// after a successful completion.
const persistWarning = "reply delivered but saving the conversation failed; this exchange may be missing from long-term memory"

// Service runs conversations for personas.
type Service struct {
	profile   *profile.Profile
	sessions  session.Manager
	memories  memory.Service
	facts     assoc.Service
	assembler aicontext.Assembler
	llm       ai.LLMService
}

// NewService wires the chat pipeline.
func NewService(p *profile.Profile, sessions session.Manager, memories memory.Service, facts assoc.Service, assembler aicontext.Assembler, llm ai.LLMService) *Service {
	return &Service{
		profile:   p,
		sessions:  sessions,
		memories:  memories,
		facts:     facts,
		assembler: assembler,
		llm:       llm,
	}
}

// Send runs the full pipeline for one user query. systemPrompt is the
// persona's base instruction and may be empty. At most one send runs per
// persona at a time; concurrent sends for the same persona queue up.
func (s *Service) Send(ctx context.Context, persona, query, systemPrompt string) (*Exchange, error) {
	release := s.sessions.Acquire(persona)
	defer release()

	sess, err := s.sessions.ActiveSession(ctx, persona)
	if err != nil {
		return nil, errors.Wrap(err, "failed to activate session")
	}

	transcript, err := s.sessions.Transcript(ctx, persona)
	if err != nil {
		// A lost transcript degrades to a fresh conversation window.
		slog.Warn("transcript read failed, continuing without history",
			"persona", persona, "error", err)
		transcript = []store.TranscriptEntry{}
	}

	// The short-term window is what the prompt already carries verbatim;
	// retrieval must not duplicate it.
	excludeIDs := s.shortTermIDs(transcript)

	// Fact statements in the query are learned before the prompt is built
	// so the facts line already reflects them.
	if err := s.facts.Record(ctx, persona, query); err != nil {
		slog.Warn("fact extraction failed", "persona", persona, "error", err)
	}

	retrievalCtx, cancel := context.WithTimeout(ctx, timeout.RetrievalTimeout)
	memories, _ := s.memories.Search(retrievalCtx, persona, query, &memory.SearchOptions{
		MaxResults: s.profile.MaxRetrievalResults,
		ExcludeIDs: excludeIDs,
	})
	cancel()

	if facts, err := s.facts.FactsLine(ctx, persona); err != nil {
		slog.Warn("facts line unavailable", "persona", persona, "error", err)
	} else if facts != "" {
		if systemPrompt != "" {
			systemPrompt = systemPrompt + "\n\n" + facts
		} else {
			systemPrompt = facts
		}
	}
	if err := s.facts.Reinforce(ctx, persona, query); err != nil {
		slog.Warn("fact reinforcement failed", "persona", persona, "error", err)
	}

	prompt := s.assembler.Assemble(&aicontext.Request{
		Persona:      persona,
		SystemPrompt: systemPrompt,
		Memories:     memories,
		Transcript:   transcript,
		Query:        query,
	})

	now := time.Now().Unix()
	transcript = append(transcript, store.TranscriptEntry{
		Role:      "user",
		Content:   query,
		Timestamp: now,
	})

	completionCtx, cancel := context.WithTimeout(ctx, timeout.CompletionTimeout)
	reply, err := s.llm.Chat(completionCtx, prompt)
	cancel()
	if err != nil {
		// The user turn survives a failed completion.
		s.persist(ctx, persona, transcript)
		return nil, errors.Wrapf(ErrCompletionUnavailable, "%v", err)
	}

	transcript = append(transcript, store.TranscriptEntry{
		Role:      "assistant",
		Content:   reply,
		Timestamp: time.Now().Unix(),
	})

	warning := ""
	if err := s.persist(ctx, persona, transcript); err != nil {
		warning = persistWarning
	}

	return &Exchange{
		SessionUID:   sess.UID,
		Reply:        reply,
		MemoriesUsed: len(memories),
		Transcript:   transcript,
		Warning:      warning,
	}, nil
}

// Transcript returns the persona's persisted transcript.
func (s *Service) Transcript(ctx context.Context, persona string) ([]store.TranscriptEntry, error) {
	return s.sessions.Transcript(ctx, persona)
}

// ClearMemory wipes the persona's memory, including learned facts, and
// returns the fresh session.
func (s *Service) ClearMemory(ctx context.Context, persona string) (*store.ChatSession, error) {
	release := s.sessions.Acquire(persona)
	defer release()

	sess, err := s.sessions.ClearMemory(ctx, persona)
	if err != nil {
		return nil, err
	}
	if err := s.facts.Clear(ctx, persona); err != nil {
		slog.Warn("failed to clear facts", "persona", persona, "error", err)
	}
	return sess, nil
}

// Session returns the persona's active session, creating one if needed.
func (s *Service) Session(ctx context.Context, persona string) (*store.ChatSession, error) {
	return s.sessions.ActiveSession(ctx, persona)
}

// persist writes the transcript. A write failure never fails the exchange;
// it is logged and returned so the caller can surface a warning.
func (s *Service) persist(ctx context.Context, persona string, transcript []store.TranscriptEntry) error {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout.PersistTimeout)
	defer cancel()
	if err := s.sessions.SaveTranscript(persistCtx, persona, transcript); err != nil {
		slog.Warn("transcript write failed, exchange kept in memory only",
			"persona", persona, "error", err)
		return err
	}
	return nil
}

// shortTermIDs collects the message row IDs of the recency window.
func (s *Service) shortTermIDs(transcript []store.TranscriptEntry) []int32 {
	window := s.profile.MemoryBufferSize * 2
	start := len(transcript) - window
	if start < 0 {
		start = 0
	}
	ids := []int32{}
	for _, entry := range transcript[start:] {
		if entry.MessageID != 0 {
			ids = append(ids, entry.MessageID)
		}
	}
	return ids
}
