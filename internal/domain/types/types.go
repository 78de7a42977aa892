// Package types holds small read types shared between layers.
package types

import (
	"time"

	"github.com/clefscore/clef/internal/domain/model"
)

// Entry is one standings board row.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// RatingReport is a user's current rating with its full history.
type RatingReport struct {
	Rating  int                 `json:"rating"`
	History []model.RatingPoint `json:"history"`
}

// RecentRound is one round in the stats view, annotated with the rating it
// produced when the round was ratable.
type RecentRound struct {
	RoundID       string    `json:"round_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	NetScore      int       `json:"net_score"`
	QuestionCount *int      `json:"question_count"`
	Difficulty    string    `json:"difficulty,omitempty"`
	Rated         bool      `json:"rated"`
	Rating        *int      `json:"rating,omitempty"`
	Delta         *int      `json:"delta,omitempty"`
}

// StatsReport bundles a user's aggregates with their most recent rounds.
type StatsReport struct {
	Stats  model.Stats   `json:"stats"`
	Recent []RecentRound `json:"recent"`
}
