package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moodlog/internal/core"
	"moodlog/internal/store"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02T15:04:05Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.EntryWriter = (*SQLiteRepository)(nil)
	_ store.EntryLister = (*SQLiteRepository)(nil)
	_ store.UserStore   = (*SQLiteRepository)(nil)
	_ store.Pinger      = (*SQLiteRepository)(nil)
)

// EntryRecord is a stored entry together with its sync bookkeeping.
type EntryRecord struct {
	ID        int64
	UserID    string
	Version   int64
	Entry     core.MoodEntry
	UpdatedAt time.Time
}

// PendingSyncEntry represents minimal data needed for sync queue messages
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	UpdatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between the server and its own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveEntry upserts the entry for its day and returns the stored record.
// Every save bumps the version and resets the row to pending sync.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, userID string, e core.MoodEntry) (EntryRecord, error) {
	if err := e.Validate(); err != nil {
		return EntryRecord{}, err
	}

	row, err := r.queries.UpsertEntry(ctx, UpsertEntryParams{
		UserID:  userID,
		Day:     e.Date.Key(),
		Mood:    string(e.Mood),
		Sleep:   sql.NullString{String: string(e.Sleep), Valid: e.HasSleep()},
		Journal: e.Journal,
		Tags:    joinTags(e.Tags),
	})
	if err != nil {
		return EntryRecord{}, fmt.Errorf("upsert entry: %w", err)
	}

	slog.InfoContext(ctx, "Mood entry saved to SQLite",
		"id", row.ID,
		"user_id", userID,
		"day", row.Day,
		"mood", row.Mood,
		"version", row.Version)

	return toEntryRecord(row)
}

// UpsertEntry implements store.EntryWriter
func (r *SQLiteRepository) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	rec, err := r.SaveEntry(ctx, userID, e)
	if err != nil {
		return core.MoodEntry{}, err
	}
	return rec.Entry, nil
}

// ListEntries implements store.EntryLister
func (r *SQLiteRepository) ListEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	from := ""
	if !since.IsZero() {
		from = core.DayKey(since)
	}
	rows, err := r.queries.ListEntriesSince(ctx, ListEntriesSinceParams{UserID: userID, Day: from})
	if err != nil {
		return nil, fmt.Errorf("list entries since %q: %w", from, err)
	}

	entries := make([]core.MoodEntry, 0, len(rows))
	for _, row := range rows {
		rec, err := toEntryRecord(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rec.Entry)
	}
	return entries, nil
}

// GetEntry retrieves a single entry by ID
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (EntryRecord, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EntryRecord{}, store.ErrNotFound
		}
		return EntryRecord{}, fmt.Errorf("get entry by id: %w", err)
	}
	return toEntryRecord(row)
}

// GetPendingSyncEntries returns entries not yet mirrored to the spreadsheet, oldest change first.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.queries.GetPendingSyncEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}

	pending := make([]PendingSyncEntry, len(rows))
	for i, row := range rows {
		pending[i] = PendingSyncEntry{
			ID:        row.ID,
			Version:   row.Version,
			UpdatedAt: parseTimestamp(row.UpdatedAt),
		}
	}
	return pending, nil
}

// MarkSynced marks an entry as synced if it has not changed since version.
// It reports false when a newer save superseded the synced version.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64) (bool, error) {
	n, err := r.queries.MarkEntrySynced(ctx, MarkEntrySyncedParams{ID: id, Version: version})
	if err != nil {
		return false, fmt.Errorf("mark entry synced: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Entry changed during sync, leaving pending", "id", id, "version", version)
		return false, nil
	}

	slog.InfoContext(ctx, "Entry marked as synced", "id", id, "version", version)
	return true, nil
}

// MarkSyncError marks an entry as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySyncError(ctx, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}

	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

// CreateUser implements store.UserWriter
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User, passwordHash string) (core.User, error) {
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:           u.ID,
		Email:        normalizeEmail(u.Email),
		PasswordHash: passwordHash,
		DisplayName:  u.DisplayName,
		PhotoUrl:     u.PhotoURL,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, store.ErrConflict
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", row.ID)
	return toCoreUser(row), nil
}

// GetUser implements store.UserReader
func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, store.ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return toCoreUser(row), nil
}

// FindUserByEmail implements store.UserReader
func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	row, err := r.queries.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, "", store.ErrNotFound
		}
		return core.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	return toCoreUser(row), row.PasswordHash, nil
}

// UpdateUser implements store.UserWriter
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.UpdateUserProfile(ctx, UpdateUserProfileParams{
		Email:       normalizeEmail(u.Email),
		DisplayName: u.DisplayName,
		PhotoUrl:    u.PhotoURL,
		ID:          u.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return core.User{}, store.ErrNotFound
		case isUniqueViolation(err):
			return core.User{}, store.ErrConflict
		}
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return toCoreUser(row), nil
}

// TouchLogin implements store.UserWriter
func (r *SQLiteRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	n, err := r.queries.TouchUserLogin(ctx, TouchUserLoginParams{
		LastLoginAt: sql.NullString{String: at.UTC().Format(timestampLayout), Valid: true},
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("touch user login: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toEntryRecord(row MoodEntry) (EntryRecord, error) {
	day, err := core.ParseDay(row.Day)
	if err != nil {
		return EntryRecord{}, fmt.Errorf("entry %d: %w", row.ID, err)
	}
	entry := core.MoodEntry{
		Date:    day,
		Mood:    core.Mood(row.Mood),
		Journal: row.Journal,
		Tags:    splitTags(row.Tags),
	}
	if row.Sleep.Valid {
		entry.Sleep = core.SleepBucket(row.Sleep.String)
	}
	return EntryRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		Version:   row.Version,
		Entry:     entry,
		UpdatedAt: parseTimestamp(row.UpdatedAt),
	}, nil
}

func toCoreUser(row User) core.User {
	u := core.User{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		PhotoURL:    row.PhotoUrl,
		CreatedAt:   parseTimestamp(row.CreatedAt),
	}
	if row.LastLoginAt.Valid {
		u.LastLoginAt = parseTimestamp(row.LastLoginAt.String)
	}
	return u
}

func joinTags(tags []core.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func splitTags(s string) []core.Tag {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]core.Tag, len(parts))
	for i, p := range parts {
		tags[i] = core.Tag(p)
	}
	return tags
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
