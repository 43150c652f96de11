// Package store declares the persistence ports the HTTP layer and workers
// depend on. Backends live in subpackages and in internal/storage.
package store

import (
	"context"
	"errors"
	"time"

	"moodlog/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Ports for outbound adapters.
type (
	// EntryWriter stores the entry for its calendar day, replacing any
	// entry the user already logged that day.
	EntryWriter interface {
		UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error)
	}

	// EntryLister returns the user's entries on or after since, newest first.
	EntryLister interface {
		ListEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error)
	}

	UserReader interface {
		GetUser(ctx context.Context, id string) (core.User, error)
		// FindUserByEmail also returns the stored password hash.
		FindUserByEmail(ctx context.Context, email string) (core.User, string, error)
	}

	UserWriter interface {
		CreateUser(ctx context.Context, u core.User, passwordHash string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) (core.User, error)
		TouchLogin(ctx context.Context, id string, at time.Time) error
	}

	UserStore interface {
		UserReader
		UserWriter
	}

	// Pinger is implemented by backends that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
