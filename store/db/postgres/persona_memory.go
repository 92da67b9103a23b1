package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alterego-app/alterego/store"
)

func (d *DB) UpsertPersonaMemory(ctx context.Context, upsert *store.PersonaMemory) (*store.PersonaMemory, error) {
	stmt := `
		INSERT INTO persona_memory (persona, transcript, last_accessed_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (persona) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			last_accessed_ts = EXCLUDED.last_accessed_ts
		RETURNING persona, transcript, last_accessed_ts`

	memory := &store.PersonaMemory{}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.Persona, upsert.Transcript, upsert.LastAccessedTs,
	).Scan(&memory.Persona, &memory.Transcript, &memory.LastAccessedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert persona memory: %w", err)
	}

	return memory, nil
}

func (d *DB) GetPersonaMemory(ctx context.Context, find *store.FindPersonaMemory) (*store.PersonaMemory, error) {
	list, err := d.ListPersonaMemories(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) ListPersonaMemories(ctx context.Context, find *store.FindPersonaMemory) ([]*store.PersonaMemory, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Persona; v != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT persona, transcript, last_accessed_ts
		FROM persona_memory
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_accessed_ts DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persona memories: %w", err)
	}
	defer rows.Close()

	list := make([]*store.PersonaMemory, 0)
	for rows.Next() {
		var memory store.PersonaMemory
		var transcript sql.NullString
		if err := rows.Scan(&memory.Persona, &transcript, &memory.LastAccessedTs); err != nil {
			return nil, fmt.Errorf("failed to scan persona memory: %w", err)
		}
		memory.Transcript = transcript.String
		if memory.Transcript == "" {
			memory.Transcript = "[]"
		}
		list = append(list, &memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persona memories: %w", err)
	}

	return list, nil
}

func (d *DB) DeletePersonaMemory(ctx context.Context, delete *store.DeletePersonaMemory) error {
	stmt := `DELETE FROM persona_memory WHERE persona = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Persona); err != nil {
		return fmt.Errorf("failed to delete persona memory: %w", err)
	}
	return nil
}
