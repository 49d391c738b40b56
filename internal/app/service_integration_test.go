package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/wikidle/internal/adapters/repository"
	service "github.com/okian/wikidle/internal/app"
	"github.com/okian/wikidle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a sqlite store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.OpenSQL(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "results.db"))
		So(err, ShouldBeNil)
		defer store.Close()

		c := newClock(day(17).Add(8 * time.Hour))
		svc := service.New(catalog(c), store,
			service.WithClock(c.Now),
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
		)
		pub := &recordingPublisher{}
		svc.Subscribe(pub)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When playing three days end to end", func() {
			for d := 0; d < 3; d++ {
				article, err := svc.MaskedArticle(ctx)
				So(err, ShouldBeNil)
				So(model.DateKey(article.Date), ShouldEqual, model.DateKey(day(17+d)))

				_, _, err = svc.Complete(ctx, player(1, "ana"), 3+d)
				So(err, ShouldBeNil)
				if d != 1 {
					_, _, err = svc.Complete(ctx, player(2, "bob"), 1+d)
					So(err, ShouldBeNil)
				}
				c.Advance(24 * time.Hour)
			}

			Convey("Then the persisted results drive the leaderboard", func() {
				So(store.Count(ctx), ShouldEqual, 5)

				board, err := svc.Leaderboard(ctx)
				So(err, ShouldBeNil)
				streak := board.Categories[0].Entries
				So(streak[0].Username, ShouldEqual, "ana")
				So(streak[0].Value, ShouldEqual, 3)
				So(streak[0].Detail, ShouldEqual, "17/10 - 19/10")
				So(streak[1].Value, ShouldEqual, 1)
				So(streak[1].Detail, ShouldEqual, "")

				best := board.Categories[1].Entries
				So(best[0].Username, ShouldEqual, "bob")
				So(best[0].Value, ShouldEqual, 1)
				So(best[0].Detail, ShouldEqual, "Tour Eiffel (17/10/2026)")
			})

			Convey("And live subscribers converge on the same leaderboard", func() {
				want, err := svc.Leaderboard(ctx)
				So(err, ShouldBeNil)
				So(waitFor(func() bool {
					got, n := pub.last()
					return n > 0 && fmt.Sprint(got) == fmt.Sprint(want)
				}), ShouldBeTrue)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		c := newClock(day(18))
		store := repository.NewMemoryStore()
		svc := service.New(catalog(c), store, service.WithClock(c.Now), service.WithWorkerCount(4))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many players complete, guess and read concurrently", func() {
			const players = 50
			var wg sync.WaitGroup
			errs := make(chan error, players*3)
			for i := 1; i <= players; i++ {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					if _, err := svc.CheckGuess(ctx, "chat"); err != nil {
						errs <- err
					}
					if _, _, err := svc.Complete(ctx, player(id, fmt.Sprintf("p%d", id)), int(id%6)+1); err != nil {
						errs <- err
					}
					if _, err := svc.Leaderboard(ctx); err != nil {
						errs <- err
					}
				}(int64(i))
			}
			wg.Wait()
			close(errs)

			Convey("Then every call succeeds and the final leaderboard sees everyone", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				So(store.Count(ctx), ShouldEqual, players)

				board, err := svc.Leaderboard(ctx)
				So(err, ShouldBeNil)
				So(board.Categories[2].Entries, ShouldHaveLength, 20)
				So(board.Categories[1].Entries[0].Value, ShouldEqual, 1)
			})
		})

		Convey("When the same player submits concurrently", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			created := 0
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					_, ok, err := svc.Complete(ctx, player(42, "dup"), n+1)
					if err == nil && ok {
						mu.Lock()
						created++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one result is stored", func() {
				So(created, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}
