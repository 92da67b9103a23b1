package store

// Association is one learned fact pair for a persona, like "box = red".
// Strength grows with reinforcement and decays over time when salience is
// computed; the row itself only carries the raw counters.
type Association struct {
	ID               int32
	Persona          string
	Left             string
	Right            string
	Strength         float64
	Exposures        int
	CreatedTs        int64
	LastUsedTs       int64
	LastReinforcedTs int64
}

type FindAssociation struct {
	Persona *string
	Left    *string
	Right   *string
}

type DeleteAssociation struct {
	ID      *int32
	Persona *string
}
