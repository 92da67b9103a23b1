// Package context assembles the completion prompt from retrieved long-term
// memories, the recent conversation window, and the new user query.
package context

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alterego-app/alterego/plugin/ai"
	"github.com/alterego-app/alterego/store"
)

// Assembler builds the message list sent to the completion provider.
type Assembler interface {
	Assemble(req *Request) []ai.Message
}

// Request carries everything one assembly needs.
type Request struct {
	Persona string

	// SystemPrompt is the persona's base instruction. Optional; it always
	// precedes the memory block when present.
	SystemPrompt string

	// Memories are retrieved long-term messages, already chronological.
	Memories []*store.Message

	// Transcript is the current session's full transcript, oldest first.
	Transcript []store.TranscriptEntry

	// Query is the new user message. It is always the final prompt entry.
	Query string
}

// Config holds the assembly tunables.
type Config struct {
	// MemoryBufferSize is the short-term buffer size in exchanges. The
	// recency window holds twice this many messages.
	MemoryBufferSize int

	// ClipLength truncates a single windowed turn.
	ClipLength int

	// CharBudget bounds the total size of the recency window. Newest
	// turns win when the budget runs out.
	CharBudget int
}

// DefaultConfig returns the default assembly tunables.
func DefaultConfig() Config {
	return Config{
		MemoryBufferSize: 3,
		ClipLength:       600,
		CharBudget:       2000,
	}
}

type assembler struct {
	config Config
}

var _ Assembler = (*assembler)(nil)

// NewAssembler creates a prompt assembler.
func NewAssembler(config Config) Assembler {
	if config.MemoryBufferSize <= 0 {
		config.MemoryBufferSize = DefaultConfig().MemoryBufferSize
	}
	if config.ClipLength <= 0 {
		config.ClipLength = DefaultConfig().ClipLength
	}
	if config.CharBudget <= 0 {
		config.CharBudget = DefaultConfig().CharBudget
	}
	return &assembler{config: config}
}

// Assemble produces [system prompt][memory block][recency window][new query].
// The memory block is omitted entirely when no memories were retrieved.
func (a *assembler) Assemble(req *Request) []ai.Message {
	messages := []ai.Message{}

	if req.SystemPrompt != "" {
		messages = append(messages, ai.SystemPrompt(req.SystemPrompt))
	}
	messages = append(messages, MemoryBlock(req.Persona, req.Memories)...)

	messages = append(messages, a.recencyWindow(req.Transcript)...)
	messages = append(messages, ai.UserMessage(req.Query))
	return messages
}

// MemoryBlock renders retrieved messages as system entries bracketed by a
// header and a footer, one entry per memory. The wording frames the block as
// recalled history so the model treats it as background rather than part of
// the live exchange. Empty when nothing was retrieved.
func MemoryBlock(persona string, memories []*store.Message) []ai.Message {
	if len(memories) == 0 {
		return nil
	}
	block := make([]ai.Message, 0, len(memories)+2)
	block = append(block, ai.SystemPrompt(fmt.Sprintf("The following are relevant past conversations with %s retrieved from long-term memory:", persona)))
	for _, m := range memories {
		if m.Role == store.RoleUser {
			block = append(block, ai.SystemPrompt(fmt.Sprintf("(From past conversation) User asked: %s", m.Content)))
		} else {
			block = append(block, ai.SystemPrompt(fmt.Sprintf("(From past conversation) %s replied: %s", persona, m.Content)))
		}
	}
	return append(block, ai.SystemPrompt("End of past memories. Return to current conversation:"))
}

// recencyWindow selects the short-term window: the last 2*bufferSize turns,
// minus trivial ones, each clipped, newest turns keeping priority when the
// character budget runs out.
func (a *assembler) recencyWindow(transcript []store.TranscriptEntry) []ai.Message {
	windowSize := a.config.MemoryBufferSize * 2
	if len(transcript) > windowSize {
		transcript = transcript[len(transcript)-windowSize:]
	}

	// Walk newest first so budget exhaustion drops the oldest turns.
	kept := []ai.Message{}
	budget := a.config.CharBudget
	for i := len(transcript) - 1; i >= 0; i-- {
		entry := transcript[i]
		if isTrivial(entry.Content) {
			continue
		}
		content := clip(entry.Content, a.config.ClipLength)
		if len(content) > budget {
			break
		}
		budget -= len(content)

		msg := ai.UserMessage(content)
		if entry.Role == "assistant" {
			msg = ai.AssistantMessage(content)
		}
		kept = append(kept, msg)
	}

	// Restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// isTrivial reports whether a turn carries no conversational signal:
// bare acknowledgements, error echoes, or near-empty content.
func isTrivial(content string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if len(trimmed) < 2 {
		return true
	}
	if trimmed == "ok" || trimmed == "thanks" {
		return true
	}
	return strings.HasPrefix(trimmed, "error:")
}

// clip truncates on a rune boundary so a multi-byte character is never cut
// mid-sequence.
func clip(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "…"
}
