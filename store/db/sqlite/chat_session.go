package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/alterego-app/alterego/store"
)

func (d *DB) UpsertChatSession(ctx context.Context, upsert *store.ChatSession) (*store.ChatSession, error) {
	stmt := `
		INSERT INTO chat_session (persona, uid, created_ts, updated_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (persona) DO UPDATE SET
			uid = EXCLUDED.uid,
			updated_ts = EXCLUDED.updated_ts
		RETURNING persona, uid, created_ts, updated_ts`

	session := &store.ChatSession{}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.Persona, upsert.UID, upsert.CreatedTs, upsert.UpdatedTs,
	).Scan(&session.Persona, &session.UID, &session.CreatedTs, &session.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert chat session: %w", err)
	}

	return session, nil
}

func (d *DB) ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Persona; v != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT persona, uid, created_ts, updated_ts
		FROM chat_session
		WHERE ` + strings.Join(where, " AND ")

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatSession, 0)
	for rows.Next() {
		var session store.ChatSession
		if err := rows.Scan(&session.Persona, &session.UID, &session.CreatedTs, &session.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		list = append(list, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat sessions: %w", err)
	}

	return list, nil
}

func (d *DB) GetChatSession(ctx context.Context, find *store.FindChatSession) (*store.ChatSession, error) {
	list, err := d.ListChatSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error {
	stmt := `DELETE FROM chat_session WHERE persona = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Persona); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}
