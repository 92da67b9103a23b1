package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/alterego-app/alterego/store"
)

func (d *DB) UpsertAssociation(ctx context.Context, upsert *store.Association) (*store.Association, error) {
	stmt := `
		INSERT INTO association (persona, left_token, right_token, strength, exposures, created_ts, last_used_ts, last_reinforced_ts)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (persona, left_token, right_token) DO UPDATE SET
			strength = EXCLUDED.strength,
			exposures = EXCLUDED.exposures,
			last_used_ts = EXCLUDED.last_used_ts,
			last_reinforced_ts = EXCLUDED.last_reinforced_ts
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.Persona, upsert.Left, upsert.Right, upsert.Strength, upsert.Exposures,
		upsert.CreatedTs, upsert.LastUsedTs, upsert.LastReinforcedTs,
	).Scan(&upsert.ID, &upsert.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert association: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListAssociations(ctx context.Context, find *store.FindAssociation) ([]*store.Association, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Persona; v != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Left; v != nil {
		where, args = append(where, "left_token = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Right; v != nil {
		where, args = append(where, "right_token = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, persona, left_token, right_token, strength, exposures, created_ts, last_used_ts, last_reinforced_ts
		FROM association
		WHERE ` + strings.Join(where, " AND ")

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Association, 0)
	for rows.Next() {
		var association store.Association
		if err := rows.Scan(
			&association.ID,
			&association.Persona,
			&association.Left,
			&association.Right,
			&association.Strength,
			&association.Exposures,
			&association.CreatedTs,
			&association.LastUsedTs,
			&association.LastReinforcedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		list = append(list, &association)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate associations: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteAssociation(ctx context.Context, delete *store.DeleteAssociation) error {
	where, args := []string{"1 = 1"}, []any{}

	if v := delete.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.Persona; v != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *v)
	}

	stmt := `DELETE FROM association WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete associations: %w", err)
	}
	return nil
}
