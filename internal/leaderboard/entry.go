// Package leaderboard stores submitted scores in memory and publishes every
// change to realtime subscribers.
package leaderboard

import (
	"strings"
	"time"

	"github.com/dmitrymomot/snaketips/pkg/validator"
)

const (
	MaxPlayerNameLen = 32
	MinLevel         = 1
	MaxLevel         = 10
)

// Entry is one scored game. Entries are immutable once stored.
type Entry struct {
	EntryID     string    `json:"entryId"`
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	Level       int       `json:"level"`
	SnakeLength int       `json:"snakeLength"`
	PlayedAt    time.Time `json:"playedAt"`
}

// ChangeType names what happened to an entry.
type ChangeType string

const (
	EntryAdded   ChangeType = "EntryAdded"
	EntryDeleted ChangeType = "EntryDeleted"
)

// ChangeEvent is what leaderboard subscribers receive.
type ChangeEvent struct {
	ChangeType ChangeType `json:"changeType"`
	Entry      Entry      `json:"entry"`
}

// SubmitRequest is a score submission as received from a client.
type SubmitRequest struct {
	PlayerName  string `json:"playerName"`
	Score       int    `json:"score"`
	Level       int    `json:"level"`
	SnakeLength int    `json:"snakeLength"`
}

// Validate checks the submission. The player name is validated after trimming.
func (r SubmitRequest) Validate() error {
	name := strings.TrimSpace(r.PlayerName)
	return validator.Apply(
		validator.Required("playerName", name),
		validator.MaxRunes("playerName", name, MaxPlayerNameLen),
		validator.Min("score", r.Score, 0),
		validator.Between("level", r.Level, MinLevel, MaxLevel),
		validator.Min("snakeLength", r.SnakeLength, 1),
	)
}
