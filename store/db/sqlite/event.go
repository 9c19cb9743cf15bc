package sqlite

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
		VALUES (` + placeholders(7) + `)
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
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UID; v != nil {
		where, args = append(where, "event.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "event.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Month; v != nil {
		start, end, err := store.MonthRange(*v)
		if err != nil {
			return nil, err
		}
		where, args = append(where, "event.event_date >= "+placeholder(len(args)+1)), append(args, start)
		where, args = append(where, "event.event_date < "+placeholder(len(args)+1)), append(args, end)
	}

	query := `
		SELECT
			id, uid, creator_id, created_ts,
			title, description, event_date, event_time, priority
		FROM event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY event.event_date ASC, event.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		var event store.Event
		var eventTime sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.CreatorID,
			&event.CreatedTs,
			&event.Title,
			&event.Description,
			&event.Date,
			&eventTime,
			&event.Priority,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if eventTime.Valid {
			event.Time = &eventTime.String
		}
		list = append(list, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) (int64, error) {
	where, args := []string{"uid = " + placeholder(1)}, []any{delete.UID}
	if v := delete.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM event WHERE "+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete event: %w", err)
	}
	return result.RowsAffected()
}
