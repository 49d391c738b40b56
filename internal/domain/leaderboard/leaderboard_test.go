package leaderboard_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func user(id int64) model.User {
	return model.User{ID: id, Username: fmt.Sprintf("player%d", id), DiscordID: fmt.Sprintf("d%d", id)}
}

func win(id int64, date time.Time, guesses int) model.Result {
	return model.Result{
		ID:          fmt.Sprintf("r-%d-%s", id, model.DateKey(date)),
		UserID:      id,
		User:        user(id),
		PuzzleDate:  date,
		PuzzleTitle: "Article " + model.DateKey(date),
		GuessCount:  guesses,
		Won:         true,
	}
}

func loss(id int64, date time.Time) model.Result {
	r := win(id, date, 40)
	r.Won = false
	return r
}

func TestComputeWinStreak(t *testing.T) {
	Convey("Given a user with two disjoint three-day runs", t, func() {
		rows := []model.Result{
			win(1, day(time.March, 10), 5),
			win(1, day(time.March, 11), 5),
			win(1, day(time.March, 12), 5),
			win(1, day(time.January, 1), 5),
			win(1, day(time.January, 2), 5),
			win(1, day(time.January, 3), 5),
		}

		Convey("When the streak is computed", func() {
			entries := leaderboard.ComputeWinStreak(rows, leaderboard.DefaultLimit)

			Convey("Then the earlier run is reported", func() {
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Value, ShouldEqual, 3)
				So(entries[0].Detail, ShouldEqual, "01/01 - 03/01")
			})
		})
	})

	Convey("Given a short run followed by a longer one", t, func() {
		rows := []model.Result{
			win(1, day(time.January, 1), 3),
			win(1, day(time.January, 2), 3),
			win(1, day(time.January, 5), 3),
			win(1, day(time.January, 6), 3),
			win(1, day(time.January, 7), 3),
		}

		Convey("Then the longer run wins", func() {
			entries := leaderboard.ComputeWinStreak(rows, leaderboard.DefaultLimit)
			So(entries[0].Value, ShouldEqual, 3)
			So(entries[0].Detail, ShouldEqual, "05/01 - 07/01")
		})
	})

	Convey("Given a run crossing a month boundary with a repeated day", t, func() {
		rows := []model.Result{
			win(1, day(time.February, 1), 3),
			win(1, day(time.January, 31), 3),
			win(1, day(time.January, 31).Add(15*time.Hour), 3),
			win(1, day(time.February, 2), 3),
		}

		Convey("Then same-day wins collapse into one day", func() {
			entries := leaderboard.ComputeWinStreak(rows, leaderboard.DefaultLimit)
			So(entries[0].Value, ShouldEqual, 3)
			So(entries[0].Detail, ShouldEqual, "31/01 - 02/02")
		})
	})

	Convey("Given users with isolated wins and losses", t, func() {
		rows := []model.Result{
			win(1, day(time.January, 1), 3),
			win(1, day(time.January, 3), 3),
			loss(1, day(time.January, 2)),
			loss(2, day(time.January, 1)),
			win(3, day(time.January, 4), 2),
			win(3, day(time.January, 5), 2),
		}

		Convey("When the streak is computed", func() {
			entries := leaderboard.ComputeWinStreak(rows, leaderboard.DefaultLimit)

			Convey("Then losses never extend a streak and losers without wins are absent", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[0].UserID, ShouldEqual, 3)
				So(entries[0].Value, ShouldEqual, 2)
				So(entries[1].UserID, ShouldEqual, 1)
				So(entries[1].Value, ShouldEqual, 1)
			})

			Convey("And a single-day streak has no detail", func() {
				So(entries[1].Detail, ShouldEqual, "")
			})

			Convey("And ranks start at one", func() {
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})
	})
}

func TestComputeBestGuess(t *testing.T) {
	Convey("Given a user with won rows of 5, 2 and 8 guesses", t, func() {
		rows := []model.Result{
			win(1, day(time.January, 1), 5),
			win(1, day(time.January, 2), 2),
			win(1, day(time.January, 3), 8),
			loss(1, day(time.January, 4)),
		}
		rows[1].PuzzleTitle = "Tour Eiffel"

		Convey("When the best guess is computed", func() {
			entries := leaderboard.ComputeBestGuess(rows, leaderboard.DefaultLimit)

			Convey("Then the minimum is kept with the puzzle that achieved it", func() {
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Value, ShouldEqual, 2)
				So(entries[0].Detail, ShouldEqual, "Tour Eiffel (02/01/2026)")
			})
		})
	})

	Convey("Given a user who reached the same minimum twice", t, func() {
		first := win(1, day(time.January, 5), 3)
		first.PuzzleTitle = "First"
		second := win(1, day(time.January, 2), 3)
		second.PuzzleTitle = "Second"

		Convey("Then the first row encountered is the one reported", func() {
			entries := leaderboard.ComputeBestGuess([]model.Result{first, second}, leaderboard.DefaultLimit)
			So(entries[0].Detail, ShouldEqual, "First (05/01/2026)")
		})
	})

	Convey("Given several users", t, func() {
		rows := []model.Result{
			win(1, day(time.January, 1), 9),
			win(2, day(time.January, 1), 4),
			win(3, day(time.January, 1), 6),
			loss(4, day(time.January, 1)),
		}

		Convey("Then lower guess counts rank first", func() {
			entries := leaderboard.ComputeBestGuess(rows, leaderboard.DefaultLimit)
			So(len(entries), ShouldEqual, 3)
			So([]int64{entries[0].UserID, entries[1].UserID, entries[2].UserID}, ShouldResemble, []int64{2, 3, 1})
			So([]int{entries[0].Value, entries[1].Value, entries[2].Value}, ShouldResemble, []int{4, 6, 9})
		})
	})
}

func TestComputeMostWins(t *testing.T) {
	Convey("Given users with different win counts", t, func() {
		rows := []model.Result{
			win(1, day(time.January, 1), 3),
			win(2, day(time.January, 1), 3),
			win(2, day(time.January, 2), 3),
			win(3, day(time.January, 1), 3),
			win(3, day(time.January, 2), 3),
			win(3, day(time.January, 3), 3),
			loss(1, day(time.January, 2)),
			loss(4, day(time.January, 1)),
		}

		Convey("When most wins is computed", func() {
			entries := leaderboard.ComputeMostWins(rows, leaderboard.DefaultLimit)

			Convey("Then users are ordered by wins and zero-win users are absent", func() {
				So(len(entries), ShouldEqual, 3)
				So(entries[0].UserID, ShouldEqual, 3)
				So(entries[0].Value, ShouldEqual, 3)
				So(entries[1].UserID, ShouldEqual, 2)
				So(entries[2].UserID, ShouldEqual, 1)
				So(entries[2].Value, ShouldEqual, 1)
			})
		})
	})

	Convey("Given users tied on wins", t, func() {
		rows := []model.Result{
			win(7, day(time.January, 1), 3),
			win(5, day(time.January, 1), 3),
			win(6, day(time.January, 1), 3),
		}

		Convey("Then ties keep first-appearance order", func() {
			entries := leaderboard.ComputeMostWins(rows, leaderboard.DefaultLimit)
			So([]int64{entries[0].UserID, entries[1].UserID, entries[2].UserID}, ShouldResemble, []int64{7, 5, 6})
		})
	})

	Convey("Given more users than the limit", t, func() {
		var rows []model.Result
		for id := int64(1); id <= 25; id++ {
			for d := 1; d <= int(id); d++ {
				rows = append(rows, win(id, day(time.January, d), 3))
			}
		}

		Convey("Then only the top entries are kept and ranked contiguously", func() {
			entries := leaderboard.ComputeMostWins(rows, leaderboard.DefaultLimit)
			So(len(entries), ShouldEqual, 20)
			So(entries[0].UserID, ShouldEqual, 25)
			So(entries[19].UserID, ShouldEqual, 6)
			for i, e := range entries {
				So(e.Rank, ShouldEqual, i+1)
			}
		})
	})
}

func TestEngine(t *testing.T) {
	Convey("Given the default engine", t, func() {
		engine := leaderboard.New()

		Convey("Then the registry lists the built-in categories in order", func() {
			metas := engine.Categories()
			So(len(metas), ShouldEqual, 3)
			So(metas[0].ID, ShouldEqual, leaderboard.WinStreak)
			So(metas[0].SortOrder, ShouldEqual, leaderboard.Descending)
			So(metas[0].ValueLabel, ShouldEqual, "days")
			So(metas[1].ID, ShouldEqual, leaderboard.BestGuess)
			So(metas[1].SortOrder, ShouldEqual, leaderboard.Ascending)
			So(metas[1].ValueLabel, ShouldEqual, "attempts")
			So(metas[2].ID, ShouldEqual, leaderboard.MostWins)
			So(metas[2].ValueLabel, ShouldEqual, "wins")
			So(engine.Limit(), ShouldEqual, leaderboard.DefaultLimit)
		})

		Convey("When computing over no rows", func() {
			data := engine.Compute(nil)

			Convey("Then every category is present with empty entries", func() {
				So(len(data), ShouldEqual, 3)
				for _, c := range data {
					So(c.Entries, ShouldNotBeNil)
					So(c.Entries, ShouldBeEmpty)
				}
			})
		})

		Convey("When computing twice over the same rows", func() {
			rows := []model.Result{
				win(2, day(time.January, 1), 4),
				win(1, day(time.January, 1), 4),
				win(1, day(time.January, 2), 7),
				win(2, day(time.January, 3), 2),
				loss(3, day(time.January, 2)),
			}
			rows[0].User.Avatar = "https://cdn.example/a.png"
			first, errA := json.Marshal(engine.Compute(rows))
			second, errB := json.Marshal(engine.Compute(rows))

			Convey("Then the output is byte-identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(cmp.Diff(string(first), string(second)), ShouldBeEmpty)
			})

			Convey("And avatars are null when missing", func() {
				So(string(first), ShouldContainSubstring, `"avatar":"https://cdn.example/a.png"`)
				So(string(first), ShouldContainSubstring, `"avatar":null`)
			})
		})
	})

	Convey("Given an engine extended with a custom category", t, func() {
		lossCount := leaderboard.Category{
			Meta: leaderboard.Meta{ID: "most-losses", Label: "Most losses", ValueLabel: "losses", SortOrder: leaderboard.Descending},
			Compute: func(rows []model.Result, limit int) []leaderboard.Entry {
				n := 0
				for _, r := range rows {
					if !r.Won {
						n++
					}
				}
				return []leaderboard.Entry{{Rank: 1, Value: n}}
			},
		}
		engine := leaderboard.New(leaderboard.WithCategory(lossCount), leaderboard.WithLimit(1))

		Convey("When computing", func() {
			rows := []model.Result{
				win(1, day(time.January, 1), 3),
				win(2, day(time.January, 1), 5),
				loss(3, day(time.January, 1)),
			}
			data := engine.Compute(rows)

			Convey("Then the new category is appended and existing ones are unchanged", func() {
				So(len(data), ShouldEqual, 4)
				So(data[3].Meta.ID, ShouldEqual, leaderboard.CategoryID("most-losses"))
				So(data[3].Entries[0].Value, ShouldEqual, 1)
				So(data[1].Entries, ShouldResemble, leaderboard.ComputeBestGuess(rows, 1))
			})

			Convey("And the limit applies to the built-in categories", func() {
				So(len(data[2].Entries), ShouldEqual, 1)
			})
		})

		Convey("When computing a single category", func() {
			data, ok := engine.ComputeCategory(leaderboard.MostWins, []model.Result{win(1, day(time.January, 1), 3)})
			_, unknown := engine.ComputeCategory("nope", nil)

			Convey("Then only that category is returned", func() {
				So(ok, ShouldBeTrue)
				So(data.Meta.ID, ShouldEqual, leaderboard.MostWins)
				So(len(data.Entries), ShouldEqual, 1)
				So(unknown, ShouldBeFalse)
			})
		})
	})
}

func TestBoard(t *testing.T) {
	Convey("Given no result rows", t, func() {
		data, err := json.Marshal(leaderboard.New().Board(nil))

		Convey("Then the response lists every category with empty entries", func() {
			So(err, ShouldBeNil)
			So(string(data), ShouldStartWith, `{"categories":[{"meta":{"id":"win-streak"`)
			So(string(data), ShouldContainSubstring, `"entries":[]`)
			So(string(data), ShouldNotContainSubstring, `null`)
		})
	})
}
