package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
)

const msPerDay = 86_400_000

// Detail layouts. Puzzle dates are calendar days encoded at UTC midnight.
const (
	dayMonthLayout     = "02/01"
	dayMonthYearLayout = "02/01/2006"
)

// userRows groups a user's rows in first-appearance order.
type userRows struct {
	user model.User
	rows []model.Result
}

// scored is an intermediate ranking row.
type scored struct {
	user   model.User
	value  int
	detail string
}

// wonRows returns the won rows of rows, in input order.
func wonRows(rows []model.Result) []model.Result {
	won := make([]model.Result, 0, len(rows))
	for _, r := range rows {
		if r.Won {
			won = append(won, r)
		}
	}
	return won
}

// groupByUser groups rows per user. Users are listed in the order of their
// first row, and each user's display fields come from that row.
func groupByUser(rows []model.Result) []*userRows {
	index := make(map[int64]*userRows)
	var groups []*userRows
	for _, r := range rows {
		g, ok := index[r.UserID]
		if !ok {
			user := r.User
			user.ID = r.UserID
			g = &userRows{user: user}
			index[r.UserID] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	return groups
}

// dayNumber maps an instant to its UTC calendar-day integer.
func dayNumber(t time.Time) int64 {
	ms := t.UnixMilli()
	d := ms / msPerDay
	if ms%msPerDay < 0 {
		d--
	}
	return d
}

func dayTime(day int64) time.Time {
	return time.UnixMilli(day * msPerDay).UTC()
}

// uniqueDays returns the sorted distinct calendar days of rows.
func uniqueDays(rows []model.Result) []int64 {
	days := make([]int64, 0, len(rows))
	for _, r := range rows {
		days = append(days, dayNumber(r.PuzzleDate))
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	out := days[:0]
	for i, d := range days {
		if i == 0 || d != days[i-1] {
			out = append(out, d)
		}
	}
	return out
}

// longestRun finds the longest run of consecutive days in sorted, distinct
// days. On equal lengths the earliest run wins: a later run replaces the
// best only when strictly longer. days must not be empty.
func longestRun(days []int64) (length, start, end int) {
	length = 1
	current, currentStart := 1, 0
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			current++
			continue
		}
		if current > length {
			length, start, end = current, currentStart, i-1
		}
		current, currentStart = 1, i
	}
	if current > length {
		length, start, end = current, currentStart, len(days)-1
	}
	return length, start, end
}

// ComputeWinStreak ranks users by their longest run of consecutive winning
// days.
func ComputeWinStreak(rows []model.Result, limit int) []Entry {
	won := wonRows(rows)
	sort.SliceStable(won, func(i, j int) bool {
		return won[i].PuzzleDate.Before(won[j].PuzzleDate)
	})

	var streaks []scored
	for _, g := range groupByUser(won) {
		days := uniqueDays(g.rows)
		length, start, end := longestRun(days)
		s := scored{user: g.user, value: length}
		if length > 1 {
			s.detail = fmt.Sprintf("%s - %s",
				dayTime(days[start]).Format(dayMonthLayout),
				dayTime(days[end]).Format(dayMonthLayout))
		}
		streaks = append(streaks, s)
	}

	sort.SliceStable(streaks, func(i, j int) bool { return streaks[i].value > streaks[j].value })
	return rank(streaks, limit)
}

// ComputeBestGuess ranks users by the fewest guesses on any won puzzle.
func ComputeBestGuess(rows []model.Result, limit int) []Entry {
	won := wonRows(rows)
	sort.SliceStable(won, func(i, j int) bool { return won[i].GuessCount < won[j].GuessCount })

	seen := make(map[int64]bool)
	var best []scored
	for _, r := range won {
		if seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true
		user := r.User
		user.ID = r.UserID
		best = append(best, scored{
			user:   user,
			value:  r.GuessCount,
			detail: fmt.Sprintf("%s (%s)", r.PuzzleTitle, r.PuzzleDate.UTC().Format(dayMonthYearLayout)),
		})
	}
	return rank(best, limit)
}

// ComputeMostWins ranks users by their number of won puzzles.
func ComputeMostWins(rows []model.Result, limit int) []Entry {
	var wins []scored
	for _, g := range groupByUser(wonRows(rows)) {
		wins = append(wins, scored{user: g.user, value: len(g.rows)})
	}
	sort.SliceStable(wins, func(i, j int) bool { return wins[i].value > wins[j].value })
	return rank(wins, limit)
}

// rank truncates sorted rows to limit and numbers them from 1.
func rank(rows []scored, limit int) []Entry {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			Rank:      i + 1,
			UserID:    r.user.ID,
			Username:  r.user.Username,
			Avatar:    avatar(r.user.Avatar),
			DiscordID: r.user.DiscordID,
			Value:     r.value,
			Detail:    r.detail,
		}
	}
	return entries
}

func avatar(a string) *string {
	if a == "" {
		return nil
	}
	return &a
}
