package cache

import (
	"context"
	"time"

	"moodlog/internal/core"
	"moodlog/internal/store"
)

// CachedEntries fronts an entry store with a per-user LRU. Every write
// through it invalidates the writer's cached lists.
type CachedEntries struct {
	lister store.EntryLister
	writer store.EntryWriter
	lru    *LRUCache[[]core.MoodEntry]
}

var (
	_ store.EntryLister = (*CachedEntries)(nil)
	_ store.EntryWriter = (*CachedEntries)(nil)
)

func NewCachedEntries(lister store.EntryLister, writer store.EntryWriter, maxUsers int, ttl time.Duration) *CachedEntries {
	return &CachedEntries{
		lister: lister,
		writer: writer,
		lru:    NewLRUCache[[]core.MoodEntry](maxUsers, ttl),
	}
}

func entriesKey(userID string, since time.Time) string {
	return userID + "|" + core.DayKey(since)
}

func (c *CachedEntries) ListEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	key := entriesKey(userID, since)
	if cached, ok := c.lru.Get(key); ok {
		return cached, nil
	}
	entries, err := c.lister.ListEntries(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	c.lru.Set(key, entries)
	return entries, nil
}

func (c *CachedEntries) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	saved, err := c.writer.UpsertEntry(ctx, userID, e)
	// Invalidate even on error: the write may have landed before failing.
	c.Invalidate(userID)
	return saved, err
}

// Invalidate drops every cached list of userID.
func (c *CachedEntries) Invalidate(userID string) {
	c.lru.DeletePrefix(userID + "|")
}

// CleanExpired implements Cleaner.
func (c *CachedEntries) CleanExpired() int {
	return c.lru.CleanExpired()
}

func (c *CachedEntries) Stats() Stats {
	return c.lru.Stats()
}
