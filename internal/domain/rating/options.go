package rating

import "github.com/clefscore/clef/internal/domain/model"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithInitialRating sets the rating before the first round.
func WithInitialRating(r float64) Option {
	return func(e *Engine) {
		e.initial = r
	}
}

// WithKFactor sets the per-question K factor.
func WithKFactor(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithOpponentRatings overrides opponent ratings per difficulty tier.
// Unknown tiers are ignored; missing tiers keep their defaults.
func WithOpponentRatings(table map[string]float64) Option {
	return func(e *Engine) {
		for raw, rating := range table {
			switch d := model.Difficulty(raw); d {
			case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
				e.opponents[d] = rating
			}
		}
	}
}
