package store

// PersonaMemory is the whole-record transcript for one persona. The record
// is read-modify-written as a unit on every completed exchange; last writer
// wins per persona. Transcript holds the full display transcript as JSON,
// never truncated by the AI-context window.
type PersonaMemory struct {
	Persona        string
	Transcript     string // JSON-encoded []TranscriptEntry
	LastAccessedTs int64
}

// TranscriptEntry is one turn of the persisted display transcript.
type TranscriptEntry struct {
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	MessageID int32  `json:"message_id,omitempty"`
}

type FindPersonaMemory struct {
	Persona *string
}

type DeletePersonaMemory struct {
	Persona string
}
