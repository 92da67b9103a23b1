package store

// Role identifies the speaker of a message.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

// Message is a single persisted conversation turn. Messages are the
// retrieval corpus: the semantic search scores these rows, not the
// whole-transcript persona memory record.
type Message struct {
	ID        int32
	UID       string
	Persona   string
	Role      Role
	Content   string
	CreatedTs int64
}

type FindMessage struct {
	ID      *int32
	UID     *string
	Persona *string
	Role    *Role
	// CreatedTsAfter/Before bound created_ts inclusively.
	CreatedTsAfter  *int64
	CreatedTsBefore *int64
	Limit           *int
	Offset          *int
	// OrderByCreatedTsDesc returns newest first (default oldest first).
	OrderByCreatedTsDesc bool
}

type DeleteMessage struct {
	ID      *int32
	Persona *string
}
