package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/christianacho/espresso/store"
)

func (d *DB) CreateEvents(ctx context.Context, create []*store.Event) ([]*store.Event, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := `INSERT INTO event (uid, creator_id, title, description, event_date, event_time, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_ts`

	for _, event := range create {
		if err := tx.QueryRowContext(ctx, stmt,
			event.UID, event.CreatorID, event.Title, event.Description,
			event.Date, event.Time, event.Priority,
		).Scan(&event.ID, &event.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", event.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit events: %w", err)
	}
	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	argIndex := 1

	if find.UID != nil {
		where = append(where, fmt.Sprintf("uid = $%d", argIndex))
		args = append(args, *find.UID)
		argIndex++
	}
	if find.CreatorID != nil {
		where = append(where, fmt.Sprintf("creator_id = $%d", argIndex))
		args = append(args, *find.CreatorID)
		argIndex++
	}
	if find.Month != nil {
		start, end, err := store.MonthRange(*find.Month)
		if err != nil {
			return nil, err
		}
		where = append(where, fmt.Sprintf("event_date >= $%d AND event_date < $%d", argIndex, argIndex+1))
		args = append(args, start, end)
		argIndex += 2
	}

	query := fmt.Sprintf(`
		SELECT id, uid, creator_id, created_ts, title, description, event_date, event_time, priority
		FROM event
		WHERE %s
		ORDER BY event_date ASC, id ASC
	`, strings.Join(where, " AND "))
	if find.Limit != nil && *find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		var e store.Event
		var eventTime sql.NullString
		if err := rows.Scan(
			&e.ID, &e.UID, &e.CreatorID, &e.CreatedTs,
			&e.Title, &e.Description, &e.Date, &eventTime, &e.Priority,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if eventTime.Valid {
			e.Time = &eventTime.String
		}
		list = append(list, &e)
	}

	return list, rows.Err()
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) (int64, error) {
	if delete == nil {
		return 0, fmt.Errorf("delete parameter cannot be nil")
	}

	query := `DELETE FROM event WHERE uid = $1`
	args := []any{delete.UID}
	if delete.CreatorID != nil {
		query += ` AND creator_id = $2`
		args = append(args, *delete.CreatorID)
	}

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete event: %w", err)
	}
	return result.RowsAffected()
}
