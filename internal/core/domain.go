// Package core holds the mood-tracking domain model: the label taxonomy,
// entry validation and the pure aggregation behind the dashboard.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxJournalLength is the reflection limit, counted in characters.
	MaxJournalLength = 150
	// MaxTags is the number of feeling tags an entry may carry.
	MaxTags = 3
	// MaxDisplayNameLength is counted in characters, like the journal.
	MaxDisplayNameLength = 100
)

type (
	Date struct {
		time.Time
	}

	// MoodEntry is one daily check-in. At most one exists per user and calendar day.
	MoodEntry struct {
		Date    Date        `json:"date"`
		Mood    Mood        `json:"mood"`
		Sleep   SleepBucket `json:"sleep,omitempty"`
		Journal string      `json:"journal,omitempty"`
		Tags    []Tag       `json:"tags,omitempty"`
	}

	User struct {
		ID          string    `json:"id"`
		Email       string    `json:"email"`
		DisplayName string    `json:"displayName"`
		PhotoURL    string    `json:"photoURL,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		LastLoginAt time.Time `json:"lastLoginAt,omitempty"`
	}
)

var (
	ErrZeroDate       = errors.New("date cannot be zero")
	ErrUnknownMood    = errors.New("unknown mood")
	ErrUnknownSleep   = errors.New("unknown sleep bucket")
	ErrUnknownTag     = errors.New("unknown tag")
	ErrTooManyTags    = errors.New("too many tags (max 3)")
	ErrDuplicateTag   = errors.New("duplicate tag")
	ErrJournalTooLong = errors.New("journal too long (max 150 characters)")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrEmptyName      = errors.New("empty display name")
	ErrNameTooLong    = errors.New("display name too long (max 100 characters)")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// HasSleep reports whether the entry carries a sleep bucket.
func (e MoodEntry) HasSleep() bool {
	return e.Sleep != ""
}

func (e MoodEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMood, e.Mood)
	}
	if e.HasSleep() && !e.Sleep.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSleep, e.Sleep)
	}
	if utf8.RuneCountInString(e.Journal) > MaxJournalLength {
		return ErrJournalTooLong
	}
	if len(e.Tags) > MaxTags {
		return ErrTooManyTags
	}
	seen := make(map[Tag]bool, len(e.Tags))
	for _, t := range e.Tags {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownTag, t)
		}
		if seen[t] {
			return fmt.Errorf("%w: %q", ErrDuplicateTag, t)
		}
		seen[t] = true
	}
	return nil
}

func (u User) Validate() error {
	email := strings.TrimSpace(u.Email)
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t\n") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(u.DisplayName) > MaxDisplayNameLength {
		return ErrNameTooLong
	}
	return nil
}
