package core

import "time"

// TrendDays is the length of the chart: today and the ten days before it.
const TrendDays = 11

// Slot is one day of the trend chart. Entry is nil when nothing was logged.
type Slot struct {
	Date   time.Time  `json:"date"`
	Label  string     `json:"label"`
	Show   bool       `json:"show"`
	Entry  *MoodEntry `json:"entry,omitempty"`
	Color  string     `json:"color,omitempty"`
	Icon   string     `json:"icon,omitempty"`
	Height int        `json:"height,omitempty"`
}

// BuildTrendSeries lays entries out on the eleven days ending today, oldest
// first. When several entries share a day the first in slice order wins.
func BuildTrendSeries(entries []MoodEntry, today time.Time) [TrendDays]Slot {
	var series [TrendDays]Slot
	start := StartOfDay(today).AddDate(0, 0, -(TrendDays - 1))

	for i := range series {
		day := start.AddDate(0, 0, i)
		slot := Slot{Date: day, Label: FormatShortDay(day)}
		for j := range entries {
			if !entries[j].Date.SameDay(day) {
				continue
			}
			entry := entries[j]
			info := entry.Mood.Info()
			slot.Show = true
			slot.Entry = &entry
			slot.Color = info.Color
			slot.Icon = info.Icon
			slot.Height = info.Height
			break
		}
		series[i] = slot
	}
	return series
}
