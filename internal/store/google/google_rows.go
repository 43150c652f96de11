package google

import (
	"fmt"
	"strings"
	"time"

	"moodlog/internal/core"
)

// Sheet columns: A user id, B day, C mood, D sleep, E journal, F tags, G updated at.
const (
	colUser = iota
	colDay
	colMood
	colSleep
	colJournal
	colTags
	colUpdated
)

func headerRow() []any {
	return []any{"User", "Day", "Mood", "Sleep", "Journal", "Tags", "Updated"}
}

// findRow returns the 1-based sheet row holding (userID, day), or 0.
func findRow(values [][]any, userID, day string) int {
	for i, row := range values {
		if safeGet(row, colUser) == userID && safeGet(row, colDay) == day {
			return i + 1
		}
	}
	return 0
}

func entryToRow(userID string, e core.MoodEntry, now time.Time) []any {
	tags := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = string(t)
	}
	return []any{
		userID,
		e.Date.Key(),
		string(e.Mood),
		string(e.Sleep),
		e.Journal,
		strings.Join(tags, ", "),
		now.UTC().Format(time.RFC3339),
	}
}

func safeGet(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
