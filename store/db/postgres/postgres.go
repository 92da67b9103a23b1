package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection using profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// Pool sized for a single-user assistant.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS message (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	persona TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('USER', 'ASSISTANT')),
	content TEXT NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE INDEX IF NOT EXISTS idx_message_persona_created_ts ON message (persona, created_ts);

CREATE TABLE IF NOT EXISTS persona_memory (
	persona TEXT PRIMARY KEY,
	transcript TEXT NOT NULL DEFAULT '[]',
	last_accessed_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE TABLE IF NOT EXISTS chat_session (
	persona TEXT PRIMARY KEY,
	uid TEXT NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE TABLE IF NOT EXISTS association (
	id SERIAL PRIMARY KEY,
	persona TEXT NOT NULL,
	left_token TEXT NOT NULL,
	right_token TEXT NOT NULL,
	strength DOUBLE PRECISION NOT NULL DEFAULT 1,
	exposures INTEGER NOT NULL DEFAULT 1,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	last_used_ts BIGINT NOT NULL DEFAULT 0,
	last_reinforced_ts BIGINT NOT NULL DEFAULT 0,
	UNIQUE (persona, left_token, right_token)
);

CREATE INDEX IF NOT EXISTS idx_association_persona ON association (persona);
`

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
