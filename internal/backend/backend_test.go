package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"moodlog/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"mongo ok", Config{Type: MongoBackend, MongoURI: "mongodb://localhost", MongoDB: "moodlog"}, false},
		{"mongo missing uri", Config{Type: MongoBackend, MongoDB: "moodlog"}, true},
		{"mongo missing db", Config{Type: MongoBackend, MongoURI: "mongodb://localhost"}, true},
		{"memory without seed", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "redis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	app := &config.Config{
		DataBackend:    "memory",
		SQLiteDBPath:   "./data/moodlog.db",
		AMQPExchange:   "moodlog",
		AMQPQueue:      "sync_entries",
		MemorySeedFile: "seed.json",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend || cfg.SeedFile != "seed.json" || cfg.AMQPQueue != "sync_entries" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	app.DataBackend = "csv"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestFactory_Memory(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	body := `{"userId":"u1","entries":[{"date":"2025-06-30T00:00:00Z","mood":"Happy","sleep":"7-8 hours","tags":["Calm"]}]}`
	if err := os.WriteFile(seed, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}

	entries, err := res.Backend.ListEntries(context.Background(), "u1", time.Time{})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestFactory_SQLiteWithoutAMQP(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "moodlog.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			t.Errorf("Cleanup: %v", err)
		}
	}()

	if err := res.Backend.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestFactory_InvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected validation error")
	}
}
