// Package quotes serves the encouragement line shown on today's mood card.
package quotes

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"

	"moodlog/internal/core"
)

// Fallback is shown when a mood has no quotes.
const Fallback = "When your heart is full, share your light with the world."

//go:embed quotes.json
var catalogueJSON []byte

type file struct {
	MoodQuotes map[string][]string `json:"moodQuotes"`
}

// Catalogue holds quotes keyed by mood index, Very Sad -2 through Very Happy 2.
type Catalogue struct {
	byIndex map[int][]string
	intn    func(n int) int
}

// Load parses the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(catalogueJSON)
}

func Parse(data []byte) (*Catalogue, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}

	c := &Catalogue{byIndex: make(map[int][]string, len(f.MoodQuotes)), intn: rand.IntN}
	for key, list := range f.MoodQuotes {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("quote key %q: %w", key, err)
		}
		if _, ok := core.MoodFromIndex(idx); !ok {
			return nil, fmt.Errorf("quote key %q: no mood with that index", key)
		}
		c.byIndex[idx] = list
	}
	return c, nil
}

// Pick returns a random quote for m, or Fallback.
func (c *Catalogue) Pick(m core.Mood) string {
	list := c.byIndex[m.Info().Index]
	if len(list) == 0 {
		return Fallback
	}
	return list[c.intn(len(list))]
}

// For returns every quote for m.
func (c *Catalogue) For(m core.Mood) []string {
	return append([]string(nil), c.byIndex[m.Info().Index]...)
}
