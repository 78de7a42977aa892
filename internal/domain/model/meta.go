package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RoundMeta is the structured part of a round's metadata blob that matters
// for rating: a difficulty tag and a question count. Clients historically
// sent questions as either a JSON number or a numeric string, so both are
// accepted.
type RoundMeta struct {
	Difficulty string
	Questions  int // 0 means absent or unusable
}

// ParseMeta decodes a metadata blob. The second return is false when the
// blob is empty or not a JSON object; malformed metadata is never an error,
// the round simply carries no metadata.
func ParseMeta(raw string) (RoundMeta, bool) {
	if strings.TrimSpace(raw) == "" {
		return RoundMeta{}, false
	}
	var fields struct {
		Difficulty string          `json:"difficulty"`
		Questions  json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return RoundMeta{}, false
	}
	m := RoundMeta{Difficulty: fields.Difficulty}
	m.Questions = decodeQuestions(fields.Questions)
	return m, true
}

// decodeQuestions coerces the questions value to an int, tolerating both
// 10 and "10". Anything else counts as absent.
func decodeQuestions(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}
