package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/wikidle/internal/adapters/mq/queue"
	"github.com/okian/wikidle/internal/adapters/mq/worker"
	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/internal/domain/model"
	logging "github.com/okian/wikidle/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (leaderboard.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return leaderboard.Board{}, f.err
	}
	return leaderboard.New().Board(nil), nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	boards chan leaderboard.Board
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{boards: make(chan leaderboard.Board, 100)}
}

func (p *fakePublisher) Publish(ctx context.Context, board leaderboard.Board) {
	p.boards <- board
}

func fill(q *queue.InMemoryQueue, n int) {
	for i := 0; i < n; i++ {
		_ = q.Enqueue(context.Background(), model.Completion{ResultID: "r", UserID: int64(i + 1)})
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		refresher := &fakeRefresher{}
		publisher := newFakePublisher()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When a completion arrives", func() {
			w := worker.New(q, refresher, publisher, worker.WithName("test"))
			go w.Run(ctx)
			fill(q, 1)

			convey.Convey("Then the leaderboard is refreshed and published", func() {
				board := <-publisher.boards
				convey.So(len(board.Categories), convey.ShouldEqual, 3)
				convey.So(refresher.count(), convey.ShouldEqual, 1)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When several completions are already queued", func() {
			fill(q, 5)
			w := worker.New(q, refresher, publisher, worker.WithCoalesce(10))
			go w.Run(ctx)

			convey.Convey("Then a single refresh absorbs them", func() {
				<-publisher.boards
				convey.So(refresher.count(), convey.ShouldEqual, 1)
				convey.So(q.Len(ctx), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When coalescing is disabled", func() {
			fill(q, 3)
			w := worker.New(q, refresher, publisher, worker.WithCoalesce(1))
			go w.Run(ctx)

			convey.Convey("Then every completion triggers its own refresh", func() {
				for i := 0; i < 3; i++ {
					<-publisher.boards
				}
				convey.So(refresher.count(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the refresh fails", func() {
			refresher.err = errors.New("store down")
			w := worker.New(q, refresher, publisher)
			go w.Run(ctx)
			fill(q, 1)

			convey.Convey("Then nothing is published and the worker keeps running", func() {
				convey.So(waitFor(func() bool { return refresher.count() == 1 }), convey.ShouldBeTrue)
				convey.So(len(publisher.boards), convey.ShouldEqual, 0)

				refresher.mu.Lock()
				refresher.err = nil
				refresher.mu.Unlock()
				fill(q, 1)
				<-publisher.boards
				convey.So(refresher.count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the queue is closed", func() {
			w := worker.New(q, refresher, publisher)
			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the worker stops", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		refresher := &fakeRefresher{}
		publisher := newFakePublisher()
		pool := worker.NewPool(3, q, refresher, publisher, worker.WithCoalesce(1))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When completions are enqueued", func() {
			fill(q, 4)

			convey.Convey("Then they are all processed", func() {
				for i := 0; i < 4; i++ {
					<-publisher.boards
				}
				convey.So(refresher.count(), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(pool.Size(), convey.ShouldEqual, 3)
			})
		})
	})

	convey.Convey("Given a pool asked for no workers", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), &fakeRefresher{}, nil)

		convey.Convey("Then it still runs one", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 1)
		})
	})
}
