// Package model contains domain models passed between layers.
package model

import "time"

// Difficulty tags a round with the tier it was played at.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a raw tag to a known tier. Returns false when the tag
// is empty; a present but unrecognized tag falls back to medium.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), true
	case "":
		return "", false
	default:
		return DifficultyMedium, true
	}
}

// RoundRecord is one submitted quiz round. NetScore is correct minus wrong
// answers and may be negative. QuestionCount and Difficulty are optional;
// when absent they may be recovered from the Meta blob.
type RoundRecord struct {
	ID            string
	UserID        string
	NetScore      int
	QuestionCount int    // 0 means unset
	Difficulty    string // empty means unset
	Meta          string // raw JSON blob as submitted, may be empty or malformed
	OccurredAt    time.Time
	Seq           int64 // storage insertion order, breaks timestamp ties
}

// RatingPoint is one entry in the rating time series: the rounded rating
// immediately after a round and its change from the previous rounded value.
type RatingPoint struct {
	OccurredAt time.Time `json:"occurred_at"`
	Rating     int       `json:"rating"`
	Delta      int       `json:"delta"`
}

// User is a registered player.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Stats aggregates a user's round history for display. Averages are nil when
// no rounds exist for the bucket.
type Stats struct {
	Rounds     int      `json:"rounds"`
	TotalScore int      `json:"total_score"`
	AvgScore   *float64 `json:"avg_score"`
	AvgEasy    *float64 `json:"avg_easy"`
	AvgMedium  *float64 `json:"avg_medium"`
	AvgHard    *float64 `json:"avg_hard"`
}
