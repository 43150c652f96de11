package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoodEntryValidate(t *testing.T) {
	good := MoodEntry{
		Date:    NewDate(2025, 3, 14),
		Mood:    Happy,
		Sleep:   Sleep7To8,
		Journal: "Went for a run",
		Tags:    []Tag{TagCalm, TagGrateful},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	minimal := MoodEntry{Date: NewDate(2025, 3, 14), Mood: VerySad}
	if err := minimal.Validate(); err != nil {
		t.Fatalf("mood-only entry should be valid, got %v", err)
	}

	tests := []struct {
		name  string
		entry MoodEntry
		want  error
	}{
		{"zero date", MoodEntry{Mood: Happy}, ErrZeroDate},
		{"missing mood", MoodEntry{Date: NewDate(2025, 1, 1)}, ErrUnknownMood},
		{"unknown mood", MoodEntry{Date: NewDate(2025, 1, 1), Mood: "Ecstatic"}, ErrUnknownMood},
		{"unknown sleep", MoodEntry{Date: NewDate(2025, 1, 1), Mood: Sad, Sleep: "12 hours"}, ErrUnknownSleep},
		{"long journal", MoodEntry{Date: NewDate(2025, 1, 1), Mood: Sad, Journal: strings.Repeat("a", 151)}, ErrJournalTooLong},
		{"four tags", MoodEntry{Date: NewDate(2025, 1, 1), Mood: Sad, Tags: []Tag{TagDown, TagTired, TagLonely, TagStressed}}, ErrTooManyTags},
		{"unknown tag", MoodEntry{Date: NewDate(2025, 1, 1), Mood: Sad, Tags: []Tag{"Hungry"}}, ErrUnknownTag},
		{"duplicate tag", MoodEntry{Date: NewDate(2025, 1, 1), Mood: Sad, Tags: []Tag{TagDown, TagDown}}, ErrDuplicateTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMoodEntryValidateCountsRunes(t *testing.T) {
	e := MoodEntry{Date: NewDate(2025, 1, 1), Mood: Neutral, Journal: strings.Repeat("é", MaxJournalLength)}
	if err := e.Validate(); err != nil {
		t.Fatalf("150 two-byte characters should fit, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name string
		user User
		want error
	}{
		{"ok", User{Email: "lisa@example.com", DisplayName: "Lisa Maria"}, nil},
		{"no at sign", User{Email: "lisa.example.com", DisplayName: "Lisa"}, ErrInvalidEmail},
		{"empty email", User{Email: " ", DisplayName: "Lisa"}, ErrInvalidEmail},
		{"empty name", User{Email: "lisa@example.com", DisplayName: "  "}, ErrEmptyName},
		{"100 CJK characters", User{Email: "mei@example.com", DisplayName: strings.Repeat("美", 100)}, nil},
		{"101 characters", User{Email: "mei@example.com", DisplayName: strings.Repeat("a", 101)}, ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
