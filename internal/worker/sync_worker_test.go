package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/robfig/cron/v3"

	"moodlog/internal/amqp"
	"moodlog/internal/core"
	"moodlog/internal/storage"
	"moodlog/internal/store"
)

type fakeStorage struct {
	records   map[int64]storage.EntryRecord
	pending   []storage.PendingSyncEntry
	synced    map[int64]int64
	errored   map[int64]bool
	pendingFn func() error
}

func newFakeStorage(recs ...storage.EntryRecord) *fakeStorage {
	f := &fakeStorage{
		records: map[int64]storage.EntryRecord{},
		synced:  map[int64]int64{},
		errored: map[int64]bool{},
	}
	for _, r := range recs {
		f.records[r.ID] = r
		f.pending = append(f.pending, storage.PendingSyncEntry{ID: r.ID, Version: r.Version})
	}
	return f
}

func (f *fakeStorage) GetEntry(_ context.Context, id int64) (storage.EntryRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return storage.EntryRecord{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeStorage) GetPendingSyncEntries(_ context.Context, limit int) ([]storage.PendingSyncEntry, error) {
	if f.pendingFn != nil {
		if err := f.pendingFn(); err != nil {
			return nil, err
		}
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStorage) MarkSynced(_ context.Context, id, version int64) (bool, error) {
	f.synced[id] = version
	return true, nil
}

func (f *fakeStorage) MarkSyncError(_ context.Context, id int64) error {
	f.errored[id] = true
	return nil
}

type fakeSheet struct {
	rows map[string]core.MoodEntry
	err  error
}

func (f *fakeSheet) UpsertEntry(_ context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	if f.err != nil {
		return core.MoodEntry{}, f.err
	}
	if f.rows == nil {
		f.rows = map[string]core.MoodEntry{}
	}
	f.rows[userID+"/"+e.Date.Key()] = e
	return e, nil
}

func record(id, version int64, mood core.Mood) storage.EntryRecord {
	return storage.EntryRecord{
		ID:      id,
		UserID:  "u1",
		Version: version,
		Entry:   core.MoodEntry{Date: core.NewDate(2025, 6, int(id)), Mood: mood},
	}
}

func TestHandleSyncMessage(t *testing.T) {
	t.Run("syncs current version", func(t *testing.T) {
		st := newFakeStorage(record(1, 3, core.Happy))
		sheet := &fakeSheet{}
		w := NewSyncWorker(st, sheet, 10)

		err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage(1, 2, "u1", "2025-06-01"))
		if err != nil {
			t.Fatalf("HandleSyncMessage: %v", err)
		}
		if got := sheet.rows["u1/2025-06-01"]; got.Mood != core.Happy {
			t.Errorf("sheet row = %+v", got)
		}
		if st.synced[1] != 3 {
			t.Errorf("marked version %d, want 3", st.synced[1])
		}
	})

	t.Run("missing entry is dropped", func(t *testing.T) {
		w := NewSyncWorker(newFakeStorage(), &fakeSheet{}, 10)
		if err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage(9, 1, "u1", "2025-06-09")); err != nil {
			t.Fatalf("HandleSyncMessage: %v", err)
		}
	})

	t.Run("sheet failure marks error", func(t *testing.T) {
		st := newFakeStorage(record(1, 1, core.Sad))
		w := NewSyncWorker(st, &fakeSheet{err: errors.New("quota exceeded")}, 10)

		if err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage(1, 1, "u1", "2025-06-01")); err == nil {
			t.Fatal("expected error so the message is requeued")
		}
		if !st.errored[1] {
			t.Error("entry should be marked with a sync error")
		}
		if _, ok := st.synced[1]; ok {
			t.Error("entry should not be marked synced")
		}
	})
}

func TestProcessPendingEntries(t *testing.T) {
	st := newFakeStorage(record(1, 1, core.Sad), record(2, 1, core.Neutral), record(3, 2, core.VeryHappy))
	st.pending = append(st.pending, storage.PendingSyncEntry{ID: 42, Version: 1})
	sheet := &fakeSheet{}
	w := NewSyncWorker(st, sheet, 10)

	if err := w.ProcessPendingEntries(context.Background()); err != nil {
		t.Fatalf("ProcessPendingEntries: %v", err)
	}
	if len(sheet.rows) != 3 {
		t.Errorf("synced %d rows, want 3", len(sheet.rows))
	}
	if !st.errored[42] {
		t.Error("a pending id without a row should be marked with a sync error")
	}
}

func TestProcessPendingEntries_BatchSize(t *testing.T) {
	st := newFakeStorage(record(1, 1, core.Sad), record(2, 1, core.Sad), record(3, 1, core.Sad))
	sheet := &fakeSheet{}
	w := NewSyncWorker(st, sheet, 2)

	if err := w.ProcessPendingEntries(context.Background()); err != nil {
		t.Fatalf("ProcessPendingEntries: %v", err)
	}
	if len(sheet.rows) != 2 {
		t.Errorf("synced %d rows, want 2", len(sheet.rows))
	}

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if len(sheet.rows) != 3 {
		t.Errorf("startup check synced %d rows, want 3", len(sheet.rows))
	}
}

func TestProcessPendingEntries_StorageError(t *testing.T) {
	st := newFakeStorage()
	st.pendingFn = func() error { return errors.New("database is locked") }
	w := NewSyncWorker(st, &fakeSheet{}, 10)

	if err := w.ProcessPendingEntries(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSchedule(t *testing.T) {
	w := NewSyncWorker(newFakeStorage(), &fakeSheet{}, 10)
	c := cron.New()

	if _, err := w.Schedule(context.Background(), c, "@every 1m"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}
	if _, err := w.Schedule(context.Background(), c, "not a spec"); err == nil {
		t.Error("expected error for an invalid spec")
	}
}

func TestNewSyncWorker_DefaultBatch(t *testing.T) {
	if w := NewSyncWorker(nil, nil, 0); w.batchSize != 10 {
		t.Errorf("batchSize = %d, want 10", w.batchSize)
	}
}
