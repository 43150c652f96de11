package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moodlog/internal/amqp"
	"moodlog/internal/core"
	"moodlog/internal/storage"
	"moodlog/internal/store"
)

// EntryRepository persists entries and returns their sync bookkeeping.
type EntryRepository interface {
	SaveEntry(ctx context.Context, userID string, e core.MoodEntry) (storage.EntryRecord, error)
}

// SyncPublisher announces stored entries to the spreadsheet worker.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, msg *amqp.EntrySyncMessage) error
}

// EntryInput is a check-in as submitted by a form or the JSON API.
type EntryInput struct {
	Mood    string   `json:"mood"`
	Sleep   string   `json:"sleep,omitempty"`
	Journal string   `json:"journal,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// EntryService orchestrates entry writes across SQLite and AMQP
type EntryService struct {
	repo      EntryRepository
	publisher SyncPublisher
}

var _ store.EntryWriter = (*EntryService)(nil)

// NewEntryService accepts a nil publisher; entries then stay pending until
// the worker's sweep picks them up.
func NewEntryService(repo EntryRepository, publisher SyncPublisher) *EntryService {
	return &EntryService{
		repo:      repo,
		publisher: publisher,
	}
}

// UpsertEntry saves the entry locally and publishes a sync message.
// A failed publish is logged, never returned: the row is already stored.
func (s *EntryService) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	rec, err := s.repo.SaveEntry(ctx, userID, e)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("save entry: %w", err)
	}

	if err := s.publishSyncMessage(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", rec.ID,
			"version", rec.Version,
			"error", err)
	}

	return rec.Entry, nil
}

// LogToday validates the input and stores it through w as the entry for
// now's calendar day, replacing anything logged earlier that day. The day is
// read in now's location.
func LogToday(ctx context.Context, w store.EntryWriter, userID string, in EntryInput, now time.Time) (core.MoodEntry, error) {
	y, m, d := now.Date()
	e, err := in.Entry(core.NewDate(y, int(m), d))
	if err != nil {
		return core.MoodEntry{}, err
	}
	return w.UpsertEntry(ctx, userID, e)
}

func (s *EntryService) publishSyncMessage(ctx context.Context, rec storage.EntryRecord) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishEntrySync(ctx, amqp.NewEntrySyncMessage(rec.ID, rec.Version, rec.UserID, rec.Entry.Date.Key()))
}

// Entry parses the submitted labels into an entry for day.
func (in EntryInput) Entry(day core.Date) (core.MoodEntry, error) {
	mood, err := core.ParseMood(in.Mood)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("%w: %q", err, in.Mood)
	}

	e := core.MoodEntry{Date: day, Mood: mood, Journal: in.Journal}
	if in.Sleep != "" {
		sleep, err := core.ParseSleepBucket(in.Sleep)
		if err != nil {
			return core.MoodEntry{}, fmt.Errorf("%w: %q", err, in.Sleep)
		}
		e.Sleep = sleep
	}

	tags, err := core.ParseTags(in.Tags)
	if err != nil {
		return core.MoodEntry{}, err
	}
	e.Tags = tags

	if err := e.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	return e, nil
}
