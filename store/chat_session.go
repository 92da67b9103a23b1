package store

// ChatSession is the active session row for a persona. One row per persona;
// clearing memory replaces the UID so stale message IDs can never collide
// with the next session's exclude set.
type ChatSession struct {
	Persona   string
	UID       string
	CreatedTs int64
	UpdatedTs int64
}

type FindChatSession struct {
	Persona *string
	UID     *string
}

type DeleteChatSession struct {
	Persona string
}
