package playtest

import (
	"fmt"

	"github.com/okian/wikidle/internal/domain/leaderboard"
)

var expectedCategories = []leaderboard.CategoryID{
	leaderboard.WinStreak,
	leaderboard.BestGuess,
	leaderboard.MostWins,
}

// VerifyLeaderboard checks the structural guarantees of a leaderboard:
// registry order, contiguous ranks from 1 and per-category sort order.
func VerifyLeaderboard(board leaderboard.Board) error {
	if len(board.Categories) < len(expectedCategories) {
		return fmt.Errorf("expected at least %d categories, got %d", len(expectedCategories), len(board.Categories))
	}
	for i, id := range expectedCategories {
		if got := board.Categories[i].Meta.ID; got != id {
			return fmt.Errorf("category %d is %q, want %q", i, got, id)
		}
	}

	for _, c := range board.Categories {
		for i, e := range c.Entries {
			if e.Rank != i+1 {
				return fmt.Errorf("%s: entry %d has rank %d", c.Meta.ID, i, e.Rank)
			}
			if i == 0 {
				continue
			}
			prev := c.Entries[i-1].Value
			switch c.Meta.SortOrder {
			case leaderboard.Ascending:
				if e.Value < prev {
					return fmt.Errorf("%s: rank %d value %d below rank %d value %d", c.Meta.ID, e.Rank, e.Value, e.Rank-1, prev)
				}
			case leaderboard.Descending:
				if e.Value > prev {
					return fmt.Errorf("%s: rank %d value %d above rank %d value %d", c.Meta.ID, e.Rank, e.Value, e.Rank-1, prev)
				}
			default:
				return fmt.Errorf("%s: unknown sort order %q", c.Meta.ID, c.Meta.SortOrder)
			}
		}
	}
	return nil
}

// verifyOutcomes checks that solvers show up on the leaderboard.
func verifyOutcomes(board leaderboard.Board, outcomes []Outcome) error {
	best := make(map[int64]int)
	for _, c := range board.Categories {
		if c.Meta.ID != leaderboard.BestGuess {
			continue
		}
		for _, e := range c.Entries {
			best[e.UserID] = e.Value
		}
	}

	solved := 0
	for _, o := range outcomes {
		if !o.Solved {
			continue
		}
		solved++
		if v, ok := best[o.UserID]; ok && v > o.Guesses {
			return fmt.Errorf("player %d solved in %d guesses but best-guess shows %d", o.UserID, o.Guesses, v)
		}
	}
	if solved > 0 && len(best) == 0 {
		return fmt.Errorf("%d players solved the puzzle but best-guess is empty", solved)
	}
	return nil
}
