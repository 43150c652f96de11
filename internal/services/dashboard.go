package services

import (
	"time"

	"moodlog/internal/core"
)

// Dashboard is everything the home screen renders for one user and day.
type Dashboard struct {
	Greeting     string                    `json:"greeting"`
	Date         string                    `json:"date"`
	Today        *core.MoodEntry           `json:"today,omitempty"`
	AverageMood  core.AverageStats         `json:"averageMood"`
	AverageSleep core.AverageStats         `json:"averageSleep"`
	Trend        [core.TrendDays]core.Slot `json:"trend"`
	Entries      []core.MoodEntry          `json:"entries"`
}

// BuildDashboard derives the dashboard from the user's recent entries.
// now is read in its own location for the "today" lookups. A nil sleepTrend
// uses the absolute sleep comparison.
func BuildDashboard(user core.User, entries []core.MoodEntry, now time.Time, sleepTrend core.SleepTrend) Dashboard {
	sorted := core.SortNewestFirst(entries)

	d := Dashboard{
		Greeting:     "Hello, " + core.FirstName(user.DisplayName) + "!",
		Date:         core.FormatLongDate(now),
		AverageMood:  core.AverageMood(sorted),
		AverageSleep: core.AverageSleepWith(sorted, sleepTrend),
		Trend:        core.BuildTrendSeries(sorted, now),
		Entries:      sorted,
	}
	if today, ok := core.FindToday(sorted, now); ok {
		d.Today = &today
	}
	return d
}
