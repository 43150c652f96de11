package core

import "strings"

const (
	VerySad   Mood = "Very Sad"
	Sad       Mood = "Sad"
	Neutral   Mood = "Neutral"
	Happy     Mood = "Happy"
	VeryHappy Mood = "Very Happy"
)

const (
	Sleep0To2  SleepBucket = "0-2 hours"
	Sleep3To4  SleepBucket = "3-4 hours"
	Sleep5To6  SleepBucket = "5-6 hours"
	Sleep7To8  SleepBucket = "7-8 hours"
	Sleep9Plus SleepBucket = "9+ hours"
)

const (
	Increase Comparison = "increase"
	Same     Comparison = "same"
	Decrease Comparison = "decrease"
)

const (
	TagJoyful       Tag = "Joyful"
	TagDown         Tag = "Down"
	TagAnxious      Tag = "Anxious"
	TagCalm         Tag = "Calm"
	TagExcited      Tag = "Excited"
	TagFrustrated   Tag = "Frustrated"
	TagLonely       Tag = "Lonely"
	TagGrateful     Tag = "Grateful"
	TagOverwhelmed  Tag = "Overwhelmed"
	TagMotivated    Tag = "Motivated"
	TagIrritable    Tag = "Irritable"
	TagPeaceful     Tag = "Peaceful"
	TagTired        Tag = "Tired"
	TagHopeful      Tag = "Hopeful"
	TagConfident    Tag = "Confident"
	TagStressed     Tag = "Stressed"
	TagContent      Tag = "Content"
	TagDisappointed Tag = "Disappointed"
	TagOptimistic   Tag = "Optimistic"
	TagRestless     Tag = "Restless"
)

const (
	iconHappy   = "/assets/images/icon-happy-white.svg"
	iconNeutral = "/assets/images/icon-neutral-white.svg"
	iconSad     = "/assets/images/icon-sad-white.svg"
	iconSleep   = "/assets/images/icon-sleep.svg"
)

type (
	Mood        string
	SleepBucket string
	Tag         string
	Comparison  string

	// MoodInfo is the presentation record of a mood label.
	MoodInfo struct {
		Weight int
		Color  string
		Icon   string
		Height int // trend bar height in px
		Index  int // quote bucket, Very Sad=-2 .. Very Happy=2
	}

	SleepInfo struct {
		Hours      float64
		Color      string
		Icon       string
		Comparison Comparison
	}
)

var moodTable = map[Mood]MoodInfo{
	VerySad:   {Weight: 1, Color: "#FF9B99", Icon: iconSad, Height: 104, Index: -2},
	Sad:       {Weight: 2, Color: "#B8B1FF", Icon: iconSad, Height: 104, Index: -1},
	Neutral:   {Weight: 3, Color: "#85CAFF", Icon: iconNeutral, Height: 165, Index: 0},
	Happy:     {Weight: 4, Color: "#88FF7B", Icon: iconHappy, Height: 214, Index: 1},
	VeryHappy: {Weight: 5, Color: "#FFC97C", Icon: iconHappy, Height: 263, Index: 2},
}

var sleepTable = map[SleepBucket]SleepInfo{
	Sleep0To2:  {Hours: 1, Color: "#FF9B99", Icon: iconSleep, Comparison: Decrease},
	Sleep3To4:  {Hours: 3.5, Color: "#B8B1FF", Icon: iconSleep, Comparison: Decrease},
	Sleep5To6:  {Hours: 5.5, Color: "#85CAFF", Icon: iconSleep, Comparison: Same},
	Sleep7To8:  {Hours: 7.5, Color: "#88FF7B", Icon: iconSleep, Comparison: Increase},
	Sleep9Plus: {Hours: 9, Color: "#88FF7B", Icon: iconSleep, Comparison: Increase},
}

var allMoods = []Mood{VeryHappy, Happy, Neutral, Sad, VerySad}

var allSleepBuckets = []SleepBucket{Sleep9Plus, Sleep7To8, Sleep5To6, Sleep3To4, Sleep0To2}

var allTags = []Tag{
	TagJoyful, TagDown, TagAnxious, TagCalm, TagExcited,
	TagFrustrated, TagLonely, TagGrateful, TagOverwhelmed, TagMotivated,
	TagIrritable, TagPeaceful, TagTired, TagHopeful, TagConfident,
	TagStressed, TagContent, TagDisappointed, TagOptimistic, TagRestless,
}

// Moods returns the mood labels from happiest to saddest.
func Moods() []Mood {
	return append([]Mood(nil), allMoods...)
}

// SleepBuckets returns the sleep buckets from longest to shortest.
func SleepBuckets() []SleepBucket {
	return append([]SleepBucket(nil), allSleepBuckets...)
}

// Tags returns the fixed feeling vocabulary in display order.
func Tags() []Tag {
	return append([]Tag(nil), allTags...)
}

func (m Mood) Valid() bool {
	_, ok := moodTable[m]
	return ok
}

// Info returns the taxonomy record for m. Unknown labels resolve to Neutral.
func (m Mood) Info() MoodInfo {
	if info, ok := moodTable[m]; ok {
		return info
	}
	return moodTable[Neutral]
}

func (m Mood) Weight() int { return m.Info().Weight }

func (s SleepBucket) Valid() bool {
	_, ok := sleepTable[s]
	return ok
}

// Info returns the taxonomy record for s. Unknown labels resolve to the 5-6 hours bucket.
func (s SleepBucket) Info() SleepInfo {
	if info, ok := sleepTable[s]; ok {
		return info
	}
	return sleepTable[Sleep5To6]
}

func (s SleepBucket) Hours() float64 { return s.Info().Hours }

func (t Tag) Valid() bool {
	for _, known := range allTags {
		if t == known {
			return true
		}
	}
	return false
}

// ParseMood matches a label case-insensitively.
func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	for _, m := range allMoods {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", ErrUnknownMood
}

// MoodFromWeight maps a 1..5 weight back to its label.
func MoodFromWeight(w int) (Mood, bool) {
	for _, m := range allMoods {
		if moodTable[m].Weight == w {
			return m, true
		}
	}
	return "", false
}

// MoodFromIndex maps a quote index (-2..2) back to its label.
func MoodFromIndex(i int) (Mood, bool) {
	for _, m := range allMoods {
		if moodTable[m].Index == i {
			return m, true
		}
	}
	return "", false
}

// ParseSleepBucket accepts the canonical label, with or without the "hours" suffix.
func ParseSleepBucket(s string) (SleepBucket, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" && !strings.HasSuffix(s, "hours") {
		s += " hours"
	}
	for _, b := range allSleepBuckets {
		if s == string(b) {
			return b, nil
		}
	}
	return "", ErrUnknownSleep
}

func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	for _, t := range allTags {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrUnknownTag
}

// ParseTags parses labels in order, rejecting duplicates and more than MaxTags.
func ParseTags(labels []string) ([]Tag, error) {
	var tags []Tag
	seen := make(map[Tag]bool)
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			continue
		}
		t, err := ParseTag(l)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			return nil, ErrDuplicateTag
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > MaxTags {
		return nil, ErrTooManyTags
	}
	return tags, nil
}
