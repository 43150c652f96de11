package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"moodlog/internal/amqp"
	"moodlog/internal/storage"
	"moodlog/internal/store"
)

// SyncStorage is the slice of the SQLite repository the worker needs.
type SyncStorage interface {
	GetEntry(ctx context.Context, id int64) (storage.EntryRecord, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id, version int64) (bool, error)
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors entries from SQLite into Google Sheets
type SyncWorker struct {
	storage   SyncStorage
	sheets    store.EntryWriter
	batchSize int

	// sweeps never overlap; a cron tick during a running sweep is skipped
	sweepMu sync.Mutex
}

func NewSyncWorker(storage SyncStorage, sheets store.EntryWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP.
// The current row is synced even when it is newer than the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"day", msg.Day)

	rec, err := w.storage.GetEntry(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Nothing to mirror; acking drops the message.
			slog.WarnContext(ctx, "Entry for sync message not found", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if rec.Version < msg.Version {
		slog.WarnContext(ctx, "Stored entry is older than sync message",
			"id", msg.ID,
			"stored_version", rec.Version,
			"message_version", msg.Version)
	}

	if err := w.syncEntryToSheets(ctx, rec); err != nil {
		return fmt.Errorf("sync entry to sheets: %w", err)
	}
	return nil
}

// ProcessPendingEntries syncs entries that are still pending. It backs up
// the queue when messages are lost or the worker was down.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	_, _, err := w.sweep(ctx, w.batchSize)
	return err
}

// StartupSyncCheck runs a larger sweep once at startup.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.sweep(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) sweep(ctx context.Context, limit int) (synced, failed int, err error) {
	if !w.sweepMu.TryLock() {
		slog.DebugContext(ctx, "Sync sweep already running, skipping")
		return 0, 0, nil
	}
	defer w.sweepMu.Unlock()

	pending, err := w.storage.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}

		rec, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			failed++
			continue
		}

		if err := w.syncEntryToSheets(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// Schedule registers the pending sweep on c using a cron spec such as
// "@every 5m". The caller starts and stops c.
func (w *SyncWorker) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if err := w.ProcessPendingEntries(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled sync sweep failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule sync sweep %q: %w", spec, err)
	}
	slog.InfoContext(ctx, "Scheduled sync sweep", "spec", spec)
	return id, nil
}

func (w *SyncWorker) syncEntryToSheets(ctx context.Context, rec storage.EntryRecord) error {
	if _, err := w.sheets.UpsertEntry(ctx, rec.UserID, rec.Entry); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("write to sheets: %w", err)
	}

	// A false result means a newer save is pending and will sync on its own.
	if _, err := w.storage.MarkSynced(ctx, rec.ID, rec.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		"id", rec.ID,
		"version", rec.Version,
		"user_id", rec.UserID,
		"day", rec.Entry.Date.Key())
	return nil
}
