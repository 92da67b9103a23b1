package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/alterego-app/alterego/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	fields := []string{"uid", "persona", "role", "content"}
	placeholderValues := []any{create.UID, create.Persona, create.Role, create.Content}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return create, nil
}

func (d *DB) UpsertMessage(ctx context.Context, upsert *store.Message) (*store.Message, error) {
	stmt := `
		INSERT INTO message (uid, persona, role, content, created_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (uid) DO UPDATE SET
			content = EXCLUDED.content
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.UID, upsert.Persona, upsert.Role, upsert.Content, upsert.CreatedTs,
	).Scan(&upsert.ID, &upsert.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert message: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "message.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "message.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Persona; v != nil {
		where, args = append(where, "message.persona = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "message.role = "+placeholder(len(args)+1)), append(args, string(*v))
	}
	if v := find.CreatedTsAfter; v != nil {
		where, args = append(where, "message.created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedTsBefore; v != nil {
		where, args = append(where, "message.created_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	orderBy := "ORDER BY message.created_ts ASC, message.id ASC"
	if find.OrderByCreatedTsDesc {
		orderBy = "ORDER BY message.created_ts DESC, message.id DESC"
	}

	query := `
		SELECT id, uid, persona, role, content, created_ts
		FROM message
		WHERE ` + strings.Join(where, " AND ") + ` ` + orderBy

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		var message store.Message
		if err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.Persona,
			&message.Role,
			&message.Content,
			&message.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		list = append(list, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return list, nil
}

func (d *DB) CountMessages(ctx context.Context, find *store.FindMessage) (int, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Persona; v != nil {
		where, args = append(where, "message.persona = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "message.role = "+placeholder(len(args)+1)), append(args, string(*v))
	}

	query := `SELECT COUNT(*) FROM message WHERE ` + strings.Join(where, " AND ")

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (d *DB) DeleteMessage(ctx context.Context, delete *store.DeleteMessage) error {
	where, args := []string{"1 = 1"}, []any{}

	if v := delete.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.Persona; v != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *v)
	}

	stmt := `DELETE FROM message WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
