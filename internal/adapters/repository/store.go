// Package repository persists game results and serves them back as the row
// set the leaderboard is computed from.
package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
)

// Store provides read/write access to game results.
type Store interface {
	// Record stores r unless the user already has a result for the same
	// puzzle date. It returns the stored row and whether it was created; on
	// conflict the existing row is returned unchanged.
	Record(ctx context.Context, r model.Result) (model.Result, bool, error)

	// Results returns every row ordered by puzzle date, user id, then id.
	Results(ctx context.Context) ([]model.Result, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) int

	Close() error
}

// validate checks the fields every store requires.
func validate(r model.Result) error {
	switch {
	case r.UserID <= 0:
		return fmt.Errorf("%w: user id must be positive", ErrInvalidResult)
	case r.GuessCount < 1:
		return fmt.Errorf("%w: guess count must be at least 1", ErrInvalidResult)
	case r.PuzzleDate.IsZero():
		return fmt.Errorf("%w: missing puzzle date", ErrInvalidResult)
	}
	return nil
}

// prepare fills the fields a store assigns to a new row. Puzzle dates are
// reduced to their calendar day at UTC midnight.
func prepare(r model.Result, cfg settings) model.Result {
	if r.ID == "" {
		r.ID = cfg.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = cfg.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	y, m, d := r.PuzzleDate.UTC().Date()
	r.PuzzleDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	r.User.ID = r.UserID
	return r
}

// sortResults applies the Results ordering in place.
func sortResults(rows []model.Result) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.PuzzleDate.Equal(b.PuzzleDate) {
			return a.PuzzleDate.Before(b.PuzzleDate)
		}
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.ID < b.ID
	})
}
