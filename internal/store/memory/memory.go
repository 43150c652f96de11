// Package memory is an in-process backend for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"moodlog/internal/core"
	"moodlog/internal/store"
)

type userRecord struct {
	user core.User
	hash string
}

type Store struct {
	mu      sync.Mutex
	entries map[string]map[string]core.MoodEntry // user id -> day key -> entry
	users   map[string]userRecord
	byEmail map[string]string
}

var (
	_ store.EntryWriter = (*Store)(nil)
	_ store.EntryLister = (*Store)(nil)
	_ store.UserStore   = (*Store)(nil)
)

func New() *Store {
	return &Store{
		entries: make(map[string]map[string]core.MoodEntry),
		users:   make(map[string]userRecord),
		byEmail: make(map[string]string),
	}
}

// seedFile is the JSON layout accepted by NewFromFile.
type seedFile struct {
	UserID  string           `json:"userId"`
	Entries []core.MoodEntry `json:"entries"`
}

// NewFromFile creates a store preloaded with one user's entries. A missing
// path yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for _, e := range seed.Entries {
		if _, err := s.UpsertEntry(context.Background(), seed.UserID, e); err != nil {
			return nil, fmt.Errorf("seed entry %s: %w", e.Date.Key(), err)
		}
	}
	return s, nil
}

// UpsertEntry stores e under its calendar day.
func (s *Store) UpsertEntry(_ context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	if err := e.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	days, ok := s.entries[userID]
	if !ok {
		days = make(map[string]core.MoodEntry)
		s.entries[userID] = days
	}
	e.Tags = append([]core.Tag(nil), e.Tags...)
	days[e.Date.Key()] = e
	return e, nil
}

// ListEntries returns entries logged on or after since's calendar day, newest first.
func (s *Store) ListEntries(_ context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := core.DayKey(since)
	var out []core.MoodEntry
	for day, e := range s.entries[userID] {
		if !since.IsZero() && day < from {
			continue
		}
		e.Tags = append([]core.Tag(nil), e.Tags...)
		out = append(out, e)
	}
	return core.SortNewestFirst(out), nil
}

func (s *Store) CreateUser(_ context.Context, u core.User, passwordHash string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := normalizeEmail(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return core.User{}, store.ErrConflict
	}
	if _, taken := s.users[u.ID]; taken {
		return core.User{}, store.ErrConflict
	}
	u.Email = email
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = userRecord{user: u, hash: passwordHash}
	s.byEmail[email] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return rec.user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return core.User{}, "", store.ErrNotFound
	}
	rec := s.users[id]
	return rec.user, rec.hash, nil
}

// UpdateUser replaces the profile fields of an existing user.
func (s *Store) UpdateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[u.ID]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	email := normalizeEmail(u.Email)
	if owner, taken := s.byEmail[email]; taken && owner != u.ID {
		return core.User{}, store.ErrConflict
	}
	delete(s.byEmail, rec.user.Email)
	rec.user.Email = email
	rec.user.DisplayName = u.DisplayName
	rec.user.PhotoURL = u.PhotoURL
	s.users[u.ID] = rec
	s.byEmail[email] = u.ID
	return rec.user, nil
}

func (s *Store) TouchLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.user.LastLoginAt = at
	s.users[id] = rec
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
