package core

import (
	"fmt"
	"sort"
	"time"
)

const (
	// WindowSize is the number of entries in a rolling average.
	WindowSize = 5
	// TrendThreshold is the minimum change between windows that counts as a trend.
	TrendThreshold = 0.5
)

const (
	moodPlaceholderDescription  = "Log 5 check-ins to see your average mood."
	sleepPlaceholderLabel       = "5-6 Hours"
	sleepPlaceholderDescription = "Track 5 nights to view average sleep."
	sleepPlaceholderColor       = "#4865DB"
	readyDescription            = "Based on your last 5 check-ins"
)

// AverageStats is the derived card shown for the mood and sleep averages.
type AverageStats struct {
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Comparison  Comparison `json:"comparison"`
	Ready       bool       `json:"ready"`
}

// FindToday returns the first entry, in slice order, logged on today's calendar day.
func FindToday(entries []MoodEntry, today time.Time) (MoodEntry, bool) {
	for _, e := range entries {
		if e.Date.SameDay(today) {
			return e, true
		}
	}
	return MoodEntry{}, false
}

// AverageMood averages the mood weights of the five most recent entries and
// compares them with the five before when at least ten are available.
func AverageMood(entries []MoodEntry) AverageStats {
	if len(entries) < WindowSize {
		info := Neutral.Info()
		return AverageStats{
			Label:       string(Neutral),
			Description: moodPlaceholderDescription,
			Color:       info.Color,
			Icon:        info.Icon,
			Comparison:  Same,
		}
	}

	sorted := SortNewestFirst(entries)
	current := meanMood(sorted[:WindowSize])
	comparison := Same
	if len(sorted) >= 2*WindowSize {
		comparison = compareWindows(current, meanMood(sorted[WindowSize:2*WindowSize]))
	}

	label := ClassifyMood(current)
	info := label.Info()
	return AverageStats{
		Label:       string(label),
		Description: readyDescription,
		Color:       info.Color,
		Icon:        info.Icon,
		Comparison:  comparison,
		Ready:       true,
	}
}

// AverageSleep averages the five most recent entries that carry a sleep
// bucket. The comparison is the fixed judgement of the resulting bucket, not a
// change against the previous window; see AverageSleepWith.
func AverageSleep(entries []MoodEntry) AverageStats {
	return averageSleep(entries, AbsoluteSleepTrend{})
}

// AverageSleepWith lets callers choose the comparison strategy.
func AverageSleepWith(entries []MoodEntry, trend SleepTrend) AverageStats {
	if trend == nil {
		trend = AbsoluteSleepTrend{}
	}
	return averageSleep(entries, trend)
}

func averageSleep(entries []MoodEntry, trend SleepTrend) AverageStats {
	var withSleep []MoodEntry
	for _, e := range entries {
		if e.HasSleep() {
			withSleep = append(withSleep, e)
		}
	}

	if len(withSleep) < WindowSize {
		return AverageStats{
			Label:       sleepPlaceholderLabel,
			Description: sleepPlaceholderDescription,
			Color:       sleepPlaceholderColor,
			Icon:        iconSleep,
			Comparison:  Same,
		}
	}

	sorted := SortNewestFirst(withSleep)
	current := meanSleep(sorted[:WindowSize])
	bucket := ClassifySleep(current)
	info := bucket.Info()
	return AverageStats{
		Label:       string(bucket),
		Description: readyDescription,
		Color:       info.Color,
		Icon:        info.Icon,
		Comparison:  trend.Compare(bucket, current, sorted[WindowSize:]),
		Ready:       true,
	}
}

// SleepTrend decides the comparison tag of a ready sleep average.
// older holds the remaining sleep entries, newest first.
type SleepTrend interface {
	Compare(bucket SleepBucket, current float64, older []MoodEntry) Comparison
}

// AbsoluteSleepTrend tags the average by its bucket alone: 7+ hours is an
// increase, 5-6 same, anything shorter a decrease.
type AbsoluteSleepTrend struct{}

func (AbsoluteSleepTrend) Compare(bucket SleepBucket, _ float64, _ []MoodEntry) Comparison {
	return bucket.Info().Comparison
}

// RelativeSleepTrend compares the mean hours with the next five sleep entries.
type RelativeSleepTrend struct{}

func (RelativeSleepTrend) Compare(_ SleepBucket, current float64, older []MoodEntry) Comparison {
	if len(older) < WindowSize {
		return Same
	}
	return compareWindows(current, meanSleep(older[:WindowSize]))
}

// SleepTrendByName resolves "absolute" or "relative"; "" means absolute.
func SleepTrendByName(name string) (SleepTrend, error) {
	switch name {
	case "", "absolute":
		return AbsoluteSleepTrend{}, nil
	case "relative":
		return RelativeSleepTrend{}, nil
	default:
		return nil, fmt.Errorf("unknown sleep comparison %q", name)
	}
}

// ClassifyMood maps a mean weight onto a mood label. Each band is closed
// at its lower bound and open at the upper one, so 3.49999 is Neutral.
func ClassifyMood(mean float64) Mood {
	switch {
	case mean >= 4.5:
		return VeryHappy
	case mean >= 3.5:
		return Happy
	case mean >= 2.5:
		return Neutral
	case mean >= 1.5:
		return Sad
	default:
		return VerySad
	}
}

// ClassifySleep maps mean hours onto a sleep bucket.
func ClassifySleep(mean float64) SleepBucket {
	switch {
	case mean >= 9:
		return Sleep9Plus
	case mean >= 7:
		return Sleep7To8
	case mean >= 5:
		return Sleep5To6
	case mean >= 3:
		return Sleep3To4
	default:
		return Sleep0To2
	}
}

// SortNewestFirst returns a copy of entries ordered by date descending.
// Entries on the same instant keep their input order.
func SortNewestFirst(entries []MoodEntry) []MoodEntry {
	sorted := make([]MoodEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	return sorted
}

func compareWindows(current, previous float64) Comparison {
	switch {
	case current > previous+TrendThreshold:
		return Increase
	case current < previous-TrendThreshold:
		return Decrease
	default:
		return Same
	}
}

func meanMood(window []MoodEntry) float64 {
	sum := 0
	for _, e := range window {
		sum += e.Mood.Weight()
	}
	return float64(sum) / float64(len(window))
}

func meanSleep(window []MoodEntry) float64 {
	var sum float64
	for _, e := range window {
		sum += e.Sleep.Hours()
	}
	return sum / float64(len(window))
}
