package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/clefscore/clef/internal/domain/types"
)

// InMemoryBoard implements Board with a mutex-guarded map. Workers rewrite a
// user's rating wholesale after each replay; reads sort on demand, which is
// fine at the board sizes a single node serves.
type InMemoryBoard struct {
	mu      sync.RWMutex
	ratings map[string]int
}

// NewInMemoryBoard creates an empty standings board.
func NewInMemoryBoard() *InMemoryBoard {
	return &InMemoryBoard{ratings: make(map[string]int)}
}

func (b *InMemoryBoard) SetRating(_ context.Context, userID string, rating int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ratings[userID] = rating
}

func (b *InMemoryBoard) Rank(_ context.Context, userID string) (types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rating, ok := b.ratings[userID]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	// Rank is 1 + the number of strictly better ratings; equal ratings
	// share a rank.
	rank := 1
	for _, r := range b.ratings {
		if r > rating {
			rank++
		}
	}
	return types.Entry{Rank: rank, UserID: userID, Rating: rating}, nil
}

func (b *InMemoryBoard) TopN(_ context.Context, n int) ([]types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]types.Entry, 0, len(b.ratings))
	for id, r := range b.ratings {
		entries = append(entries, types.Entry{UserID: id, Rating: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
		if i > 0 && entries[i].Rating == entries[i-1].Rating {
			entries[i].Rank = entries[i-1].Rank
		}
	}
	return entries, nil
}

func (b *InMemoryBoard) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ratings)
}
