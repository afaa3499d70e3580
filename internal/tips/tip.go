// Package tips holds the read-only catalogue of snake gameplay tips.
package tips

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCategory   = errors.New("tips: unknown category")
	ErrInvalidDifficulty = errors.New("tips: unknown difficulty")
)

// Category groups tips by gameplay concern.
type Category string

const (
	Movement   Category = "Movement"
	Survival   Category = "Survival"
	Scoring    Category = "Scoring"
	Psychology Category = "Psychology"
)

// Categories lists every known category.
var Categories = []Category{Movement, Survival, Scoring, Psychology}

// ParseCategory matches s against known categories ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Difficulty ranks how experienced a player should be to use a tip.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists every known difficulty.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty matches s against known difficulties ignoring case.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", ErrInvalidDifficulty
}

// Tip is one catalogue entry.
type Tip struct {
	TipID      string     `json:"tipId"`
	Message    string     `json:"message"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// Filter narrows tips by category and difficulty. Zero fields match anything.
type Filter struct {
	Category   Category
	Difficulty Difficulty
}

// ParseFilter builds a filter from raw query values. Empty values are unset.
func ParseFilter(category, difficulty string) (Filter, error) {
	var (
		f   Filter
		err error
	)
	if strings.TrimSpace(category) != "" {
		if f.Category, err = ParseCategory(category); err != nil {
			return Filter{}, err
		}
	}
	if strings.TrimSpace(difficulty) != "" {
		if f.Difficulty, err = ParseDifficulty(difficulty); err != nil {
			return Filter{}, err
		}
	}
	return f, nil
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Tip) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && t.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// IsZero reports whether the filter accepts every tip.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.Difficulty == ""
}
