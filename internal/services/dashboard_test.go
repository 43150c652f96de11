package services

import (
	"testing"
	"time"

	"moodlog/internal/core"
)

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	var entries []core.MoodEntry
	// Oldest first on purpose: the dashboard must not depend on input order.
	for i := 9; i >= 0; i-- {
		entries = append(entries, core.MoodEntry{
			Date:  core.Date{Time: core.NewDate(2025, 6, 30).AddDate(0, 0, -i)},
			Mood:  core.VeryHappy,
			Sleep: core.Sleep7To8,
		})
	}

	d := BuildDashboard(core.User{DisplayName: "Lisa Maria"}, entries, now, nil)

	if d.Greeting != "Hello, Lisa!" {
		t.Errorf("greeting = %q", d.Greeting)
	}
	if d.Date != "Monday, June 30th, 2025" {
		t.Errorf("date = %q", d.Date)
	}
	if d.Today == nil || d.Today.Date.Key() != "2025-06-30" {
		t.Fatalf("today = %+v", d.Today)
	}
	if !d.AverageMood.Ready || d.AverageMood.Label != string(core.VeryHappy) {
		t.Errorf("average mood = %+v", d.AverageMood)
	}
	if !d.AverageSleep.Ready || d.AverageSleep.Label != string(core.Sleep7To8) {
		t.Errorf("average sleep = %+v", d.AverageSleep)
	}
	if d.Entries[0].Date.Key() != "2025-06-30" {
		t.Errorf("entries not newest first: %s", d.Entries[0].Date.Key())
	}
	if d.Trend[0].Show {
		t.Error("the oldest slot predates every entry")
	}
	for i := 1; i < core.TrendDays; i++ {
		if !d.Trend[i].Show {
			t.Errorf("slot %d should be populated", i)
		}
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(core.User{}, nil, time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC), core.RelativeSleepTrend{})

	if d.Greeting != "Hello, there!" {
		t.Errorf("greeting = %q", d.Greeting)
	}
	if d.Today != nil {
		t.Errorf("today = %+v, want nil", d.Today)
	}
	if d.AverageMood.Ready || d.AverageSleep.Ready {
		t.Error("averages should be placeholders")
	}
	for i, s := range d.Trend {
		if s.Show {
			t.Errorf("slot %d should be empty", i)
		}
	}
}
