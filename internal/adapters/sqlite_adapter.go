package adapters

import (
	"context"
	"time"

	"moodlog/internal/core"
	"moodlog/internal/services"
	"moodlog/internal/storage"
	"moodlog/internal/store"
)

// SQLiteAdapter serves reads and user operations from SQLiteRepository and
// routes entry writes through EntryService so they are published for sync.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.EntryService
}

var (
	_ store.EntryWriter = (*SQLiteAdapter)(nil)
	_ store.EntryLister = (*SQLiteAdapter)(nil)
	_ store.UserStore   = (*SQLiteAdapter)(nil)
	_ store.Pinger      = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.EntryService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// UpsertEntry implements store.EntryWriter
func (a *SQLiteAdapter) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	return a.service.UpsertEntry(ctx, userID, e)
}

// ListEntries implements store.EntryLister
func (a *SQLiteAdapter) ListEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	return a.storage.ListEntries(ctx, userID, since)
}

func (a *SQLiteAdapter) GetUser(ctx context.Context, id string) (core.User, error) {
	return a.storage.GetUser(ctx, id)
}

func (a *SQLiteAdapter) FindUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	return a.storage.FindUserByEmail(ctx, email)
}

func (a *SQLiteAdapter) CreateUser(ctx context.Context, u core.User, passwordHash string) (core.User, error) {
	return a.storage.CreateUser(ctx, u, passwordHash)
}

func (a *SQLiteAdapter) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	return a.storage.UpdateUser(ctx, u)
}

func (a *SQLiteAdapter) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return a.storage.TouchLogin(ctx, id, at)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
