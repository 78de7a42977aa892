// Package rating reconstructs a player's skill rating from their round
// history. The rating is an Elo-style value: every question in a round is
// replayed as a win or a loss against a fixed opponent rating chosen by the
// round's difficulty, and the rating moves one question at a time. The
// update is path-dependent, so the caller must supply rounds in chronological
// order; the engine fails fast when it sees them out of order.
package rating

import (
	"math"
	"time"

	"github.com/clefscore/clef/internal/domain/model"
)

// Default engine parameters.
const (
	defaultInitialRating = 1000.0
	defaultKFactor       = 32.0

	// Opponent ratings per tier. Easy rounds play a weaker opponent, so
	// wrong answers cost more; hard rounds play a stronger one, so correct
	// answers gain more.
	defaultEasyOpponent   = 800.0
	defaultMediumOpponent = 1000.0
	defaultHardOpponent   = 1200.0
)

// Engine replays round histories into a rating time series. It is stateless
// across calls and safe for concurrent use.
type Engine struct {
	initial   float64
	k         float64
	opponents map[model.Difficulty]float64
}

// New creates an Engine with the default rating table.
func New(opts ...Option) *Engine {
	e := &Engine{
		initial: defaultInitialRating,
		k:       defaultKFactor,
		opponents: map[model.Difficulty]float64{
			model.DifficultyEasy:   defaultEasyOpponent,
			model.DifficultyMedium: defaultMediumOpponent,
			model.DifficultyHard:   defaultHardOpponent,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State is the rating value threaded through a replay. It is small enough to
// checkpoint: a replay can resume from a stored State instead of starting
// from scratch, as long as the appended rounds stay in order.
type State struct {
	Rating float64
	// lastAt tracks the ordering precondition across Step calls.
	lastAt time.Time
	seen   bool
}

// NewState returns the state before any round: the initial rating.
func (e *Engine) NewState() State {
	return State{Rating: e.initial}
}

// Result is the outcome of a full replay.
type Result struct {
	// Final is the unrounded internal rating after the last ratable round.
	Final float64
	// Series holds one point per ratable round, in input order.
	Series []model.RatingPoint
	// Skipped counts unratable rounds that contributed nothing.
	Skipped int
}

// Compute replays rounds in order and returns the final rating and the
// per-round series. rounds must be sorted ascending by occurrence time;
// equal timestamps are fine (the store breaks ties by insertion order).
// Returns ErrOutOfOrder otherwise.
func (e *Engine) Compute(rounds []model.RoundRecord) (Result, error) {
	res := Result{Series: make([]model.RatingPoint, 0, len(rounds))}
	st := e.NewState()
	for i := range rounds {
		next, point, ratable, err := e.Step(st, rounds[i])
		if err != nil {
			return Result{}, err
		}
		st = next
		if !ratable {
			res.Skipped++
			continue
		}
		res.Series = append(res.Series, point)
	}
	res.Final = st.Rating
	return res, nil
}

// Step folds a single round into the state. The third return reports whether
// the round was ratable; unratable rounds advance only the ordering check
// and leave the rating untouched.
func (e *Engine) Step(st State, r model.RoundRecord) (State, model.RatingPoint, bool, error) {
	if st.seen && r.OccurredAt.Before(st.lastAt) {
		return st, model.RatingPoint{}, false, ErrOutOfOrder
	}
	st.lastAt = r.OccurredAt
	st.seen = true

	correct, wrong, opponent, ok := e.resolve(r)
	if !ok {
		return st, model.RatingPoint{}, false, nil
	}

	prev := st.Rating
	rating := st.Rating
	// Corrects before wrongs is a deliberate tie-break: the per-question
	// updates are non-linear, so the order is observable in the output.
	for i := 0; i < correct; i++ {
		rating += e.k * (1.0 - expected(opponent, rating))
	}
	for i := 0; i < wrong; i++ {
		rating += e.k * (0.0 - expected(opponent, rating))
	}
	st.Rating = rating

	point := model.RatingPoint{
		OccurredAt: r.OccurredAt,
		Rating:     int(math.Round(rating)),
		Delta:      int(math.Round(rating)) - int(math.Round(prev)),
	}
	return st, point, true, nil
}

// resolve derives the per-question outcomes and the opponent rating for a
// round, or reports it unratable.
func (e *Engine) resolve(r model.RoundRecord) (correct, wrong int, opponent float64, ok bool) {
	meta, hasMeta := model.ParseMeta(r.Meta)

	tag := r.Difficulty
	if tag == "" && hasMeta {
		tag = meta.Difficulty
	}
	difficulty, tagged := model.ParseDifficulty(tag)
	if !tagged {
		return 0, 0, 0, false
	}

	questions := r.QuestionCount
	if questions == 0 && hasMeta {
		questions = meta.Questions
	}
	if questions <= 0 {
		return 0, 0, 0, false
	}

	// The unique integer split consistent with net = correct - wrong and
	// correct + wrong = questions. Odd sums round half away from zero
	// (half-up, since the sum of a ratable round is non-negative).
	correct = int(math.Round(float64(questions+r.NetScore) / 2.0))
	wrong = questions - correct
	if correct < 0 || correct > questions {
		// |net| > questions: malformed aggregate, skip rather than apply
		// out-of-range updates.
		return 0, 0, 0, false
	}

	return correct, wrong, e.opponents[difficulty], true
}

// expected is the Elo win probability against opponent at rating r.
func expected(opponent, r float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-r)/400.0))
}
