package sqlite

import (
	"context"
	"database/sql"

	// Import the pure-Go SQLite driver.
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database at profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// busy_timeout avoids SQLITE_BUSY under the write burst after each
	// completed exchange (message rows plus the transcript upsert).
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// SQLite serializes writes anyway; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrapf(err, "failed to ping database: %s", profile.DSN)
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	persona TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('USER', 'ASSISTANT')),
	content TEXT NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_message_persona_created_ts ON message (persona, created_ts);

CREATE TABLE IF NOT EXISTS persona_memory (
	persona TEXT PRIMARY KEY,
	transcript TEXT NOT NULL DEFAULT '[]',
	last_accessed_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE TABLE IF NOT EXISTS chat_session (
	persona TEXT PRIMARY KEY,
	uid TEXT NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE TABLE IF NOT EXISTS association (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	persona TEXT NOT NULL,
	left_token TEXT NOT NULL,
	right_token TEXT NOT NULL,
	strength REAL NOT NULL DEFAULT 1,
	exposures INTEGER NOT NULL DEFAULT 1,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
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
