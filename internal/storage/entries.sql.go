package storage

import (
	"context"
	"database/sql"
)

const upsertEntry = `-- name: UpsertEntry :one
INSERT INTO mood_entries (user_id, day, mood, sleep, journal, tags)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, day) DO UPDATE SET
    mood        = excluded.mood,
    sleep       = excluded.sleep,
    journal     = excluded.journal,
    tags        = excluded.tags,
    version     = mood_entries.version + 1,
    sync_status = 'pending',
    updated_at  = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
RETURNING id, user_id, day, mood, sleep, journal, tags, version, sync_status, created_at, updated_at, synced_at
`

type UpsertEntryParams struct {
	UserID  string
	Day     string
	Mood    string
	Sleep   sql.NullString
	Journal string
	Tags    string
}

func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) (MoodEntry, error) {
	row := q.db.QueryRowContext(ctx, upsertEntry,
		arg.UserID,
		arg.Day,
		arg.Mood,
		arg.Sleep,
		arg.Journal,
		arg.Tags,
	)
	var i MoodEntry
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Day,
		&i.Mood,
		&i.Sleep,
		&i.Journal,
		&i.Tags,
		&i.Version,
		&i.SyncStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SyncedAt,
	)
	return i, err
}

const listEntriesSince = `-- name: ListEntriesSince :many
SELECT id, user_id, day, mood, sleep, journal, tags, version, sync_status, created_at, updated_at, synced_at
FROM mood_entries
WHERE user_id = ? AND day >= ?
ORDER BY day DESC
`

type ListEntriesSinceParams struct {
	UserID string
	Day    string
}

func (q *Queries) ListEntriesSince(ctx context.Context, arg ListEntriesSinceParams) ([]MoodEntry, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesSince, arg.UserID, arg.Day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MoodEntry
	for rows.Next() {
		var i MoodEntry
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Day,
			&i.Mood,
			&i.Sleep,
			&i.Journal,
			&i.Tags,
			&i.Version,
			&i.SyncStatus,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.SyncedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getEntry = `-- name: GetEntry :one
SELECT id, user_id, day, mood, sleep, journal, tags, version, sync_status, created_at, updated_at, synced_at
FROM mood_entries
WHERE id = ?
`

func (q *Queries) GetEntry(ctx context.Context, id int64) (MoodEntry, error) {
	row := q.db.QueryRowContext(ctx, getEntry, id)
	var i MoodEntry
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Day,
		&i.Mood,
		&i.Sleep,
		&i.Journal,
		&i.Tags,
		&i.Version,
		&i.SyncStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.SyncedAt,
	)
	return i, err
}

const getPendingSyncEntries = `-- name: GetPendingSyncEntries :many
SELECT id, version, updated_at
FROM mood_entries
WHERE sync_status IN ('pending', 'error')
ORDER BY updated_at ASC
LIMIT ?
`

type GetPendingSyncEntriesRow struct {
	ID        int64
	Version   int64
	UpdatedAt string
}

func (q *Queries) GetPendingSyncEntries(ctx context.Context, limit int64) ([]GetPendingSyncEntriesRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingSyncEntriesRow
	for rows.Next() {
		var i GetPendingSyncEntriesRow
		if err := rows.Scan(&i.ID, &i.Version, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markEntrySynced = `-- name: MarkEntrySynced :execrows
UPDATE mood_entries
SET sync_status = 'synced', synced_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE id = ? AND version = ?
`

type MarkEntrySyncedParams struct {
	ID      int64
	Version int64
}

func (q *Queries) MarkEntrySynced(ctx context.Context, arg MarkEntrySyncedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markEntrySynced, arg.ID, arg.Version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markEntrySyncError = `-- name: MarkEntrySyncError :exec
UPDATE mood_entries
SET sync_status = 'error'
WHERE id = ?
`

func (q *Queries) MarkEntrySyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntrySyncError, id)
	return err
}
