// Package repository provides persistence for users and rounds, and the
// in-memory standings board derived from them.
package repository

import (
	"context"

	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/internal/domain/types"
)

// UserStore provides access to registered players.
type UserStore interface {
	// CreateUser persists a new user. Returns ErrDuplicateUsername when the
	// username is taken.
	CreateUser(ctx context.Context, u model.User) error

	// UserByUsername returns ErrNotFound for unknown usernames.
	UserByUsername(ctx context.Context, username string) (model.User, error)

	// UserByID returns ErrNotFound for unknown ids.
	UserByID(ctx context.Context, id string) (model.User, error)
}

// RoundStore provides access to submitted rounds.
type RoundStore interface {
	// AppendRound persists a round. The store assigns the insertion
	// sequence used to break timestamp ties.
	AppendRound(ctx context.Context, r model.RoundRecord) error

	// RoundsByUser returns the user's full history ordered by occurrence
	// time ascending, insertion order breaking ties. This ordering is the
	// rating engine's precondition.
	RoundsByUser(ctx context.Context, userID string) ([]model.RoundRecord, error)

	// RecentRounds returns up to limit newest rounds, newest first.
	RecentRounds(ctx context.Context, userID string, limit int) ([]model.RoundRecord, error)

	// Stats aggregates the user's history.
	Stats(ctx context.Context, userID string) (model.Stats, error)
}

// Board tracks the current rating per user for ranking reads.
type Board interface {
	// SetRating records the latest computed rating for a user.
	SetRating(ctx context.Context, userID string, rating int)

	// Rank returns the standings row for a user, ErrNotFound if absent.
	Rank(ctx context.Context, userID string) (types.Entry, error)

	// TopN returns the best n rows ordered by rating descending.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of users on the board.
	Count(ctx context.Context) int
}
