// Package service provides the game service behind the HTTP API: it serves
// the masked daily article, checks guesses, records completions and keeps
// the leaderboard fresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/wikidle/internal/adapters/document"
	eventqueue "github.com/okian/wikidle/internal/adapters/mq/queue"
	workerpool "github.com/okian/wikidle/internal/adapters/mq/worker"
	"github.com/okian/wikidle/internal/adapters/repository"
	"github.com/okian/wikidle/internal/domain/guess"
	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/internal/domain/masking"
	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/pkg/logger"
	"github.com/okian/wikidle/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Service implements the API dependencies for the game.
type Service struct {
	mu sync.RWMutex

	documents document.Provider
	store     repository.Store
	engine    *leaderboard.Engine

	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Leaderboard cache. generation bumps on every new result; a computed
	// board is only cached when no result landed while it was computed.
	flight      singleflight.Group
	boardMu     sync.RWMutex
	board       leaderboard.Board
	boardGen    uint64
	generation  uint64
	boardCached bool

	subMu       sync.RWMutex
	subscribers []workerpool.Publisher

	workerCount int
	queueSize   int
	engineOpts  []leaderboard.Option
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service over a document provider and a result store.
func New(documents document.Provider, store repository.Store, opts ...Option) *Service {
	s := &Service{
		documents:   documents,
		store:       store,
		workerCount: 1,
		queueSize:   64,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.engine = leaderboard.New(s.engineOpts...)
	return s
}

// Subscribe registers p to receive every refreshed leaderboard.
func (s *Service) Subscribe(p workerpool.Publisher) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, p)
}

// Start launches the refresh pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s, s)
	s.workerPool.Start(ctx)

	metrics.UpdateResultsTotal(s.store.Count(ctx))

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("leaderboardLimit", s.engine.Limit()),
	)
	return nil
}

// Stop drains the refresh pipeline. The store is owned by the caller.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "refresh workers did not stop cleanly", logger.Error(err))
	}
	s.eventQueue, s.workerPool = nil, nil
	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

// today fetches the current document and classifies provider failures.
func (s *Service) today(ctx context.Context) (model.Document, error) {
	doc, err := s.documents.Today(ctx)
	if err != nil {
		metrics.RecordDocumentError()
		return model.Document{}, fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
	}
	return doc, nil
}

// MaskedArticle returns today's article with every word hidden.
func (s *Service) MaskedArticle(ctx context.Context) (masking.Article, error) {
	doc, err := s.today(ctx)
	if err != nil {
		return masking.Article{}, err
	}
	article := masking.Mask(doc)
	metrics.RecordArticleServed()
	metrics.UpdateDocumentWords(article.TotalWords)
	return article, nil
}

// CheckGuess looks a word up in today's article.
func (s *Service) CheckGuess(ctx context.Context, word string) (guess.Result, error) {
	doc, err := s.today(ctx)
	if err != nil {
		return guess.Result{}, err
	}
	res := guess.Check(word, doc)
	switch {
	case res.Word == "":
		metrics.RecordGuess(metrics.GuessEmpty, 0)
	case res.Found:
		metrics.RecordGuess(metrics.GuessHit, res.Occurrences)
	default:
		metrics.RecordGuess(metrics.GuessMiss, 0)
	}
	return res, nil
}

// Yesterday returns the previous day's article title. ok is false when no
// document exists for that day.
func (s *Service) Yesterday(ctx context.Context) (title string, ok bool, err error) {
	doc, err := s.documents.Yesterday(ctx)
	if errors.Is(err, document.ErrNoDocument) {
		return "", false, nil
	}
	if err != nil {
		metrics.RecordDocumentError()
		return "", false, fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
	}
	return doc.Title, true, nil
}

// Complete records that user found today's article in guessCount guesses.
// A user keeps a single result per day: repeats return the stored row with
// created false.
func (s *Service) Complete(ctx context.Context, user model.User, guessCount int) (model.Result, bool, error) {
	if user.ID <= 0 {
		return model.Result{}, false, ErrInvalidUser
	}
	if guessCount < 1 {
		return model.Result{}, false, ErrInvalidGuessCount
	}
	doc, err := s.today(ctx)
	if err != nil {
		return model.Result{}, false, err
	}

	stored, created, err := s.store.Record(ctx, model.Result{
		UserID:      user.ID,
		User:        user,
		PuzzleDate:  doc.Date,
		PuzzleTitle: doc.Title,
		GuessCount:  guessCount,
		Won:         true,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return model.Result{}, false, fmt.Errorf("record result: %w", err)
	}
	metrics.RecordResult(created, stored.Won)
	if !created {
		return stored, false, nil
	}

	s.invalidate()
	s.notify(ctx, stored)
	s.logger.Info(ctx, "result recorded",
		logger.Int64("userId", user.ID),
		logger.String("date", model.DateKey(stored.PuzzleDate)),
		logger.Int("guessCount", guessCount),
	)
	return stored, true, nil
}

// notify enqueues a refresh for a new result. A full queue only delays the
// push to live clients; reads recompute because the cache was invalidated.
func (s *Service) notify(ctx context.Context, r model.Result) {
	s.mu.RLock()
	q := s.eventQueue
	s.mu.RUnlock()
	if q == nil {
		return
	}
	err := q.Enqueue(ctx, eventqueue.Event{
		ResultID:   r.ID,
		UserID:     r.UserID,
		PuzzleDate: r.PuzzleDate,
		RecordedAt: r.CreatedAt,
	})
	if err != nil {
		s.logger.Warn(ctx, "leaderboard refresh not queued",
			logger.String("resultId", r.ID), logger.Error(err))
	}
}

func (s *Service) invalidate() {
	s.boardMu.Lock()
	s.generation++
	s.boardMu.Unlock()
}

// Leaderboard returns the current leaderboard, computing it at most once
// for concurrent callers.
func (s *Service) Leaderboard(ctx context.Context) (leaderboard.Board, error) {
	s.boardMu.RLock()
	if s.boardCached && s.boardGen == s.generation {
		b := s.board
		s.boardMu.RUnlock()
		return b, nil
	}
	s.boardMu.RUnlock()

	// The shared computation outlives any single caller; each caller
	// still stops waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("leaderboard", func() (any, error) {
		return s.Refresh(shared)
	})
	select {
	case <-ctx.Done():
		return leaderboard.Board{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return leaderboard.Board{}, res.Err
		}
		return res.Val.(leaderboard.Board), nil
	}
}

// Refresh recomputes the leaderboard from every stored result.
func (s *Service) Refresh(ctx context.Context) (leaderboard.Board, error) {
	start := time.Now()

	s.boardMu.RLock()
	gen := s.generation
	s.boardMu.RUnlock()

	rows, err := s.store.Results(ctx)
	if err != nil {
		metrics.RecordLeaderboardError()
		return leaderboard.Board{}, fmt.Errorf("load results: %w", err)
	}
	board := s.engine.Board(rows)

	s.boardMu.Lock()
	if gen == s.generation {
		s.board, s.boardGen, s.boardCached = board, gen, true
	}
	s.boardMu.Unlock()

	metrics.RecordLeaderboardComputation(float64(time.Since(start).Milliseconds()))
	for _, c := range board.Categories {
		metrics.UpdateLeaderboardEntries(string(c.Meta.ID), len(c.Entries))
	}
	return board, nil
}

// Publish forwards a refreshed leaderboard to every subscriber.
func (s *Service) Publish(ctx context.Context, board leaderboard.Board) {
	s.subMu.RLock()
	subs := append([]workerpool.Publisher(nil), s.subscribers...)
	s.subMu.RUnlock()
	for _, p := range subs {
		p.Publish(ctx, board)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"leaderboardLimit": s.engine.Limit(),
		"results":          s.store.Count(ctx),
	}

	s.subMu.RLock()
	stats["subscribers"] = len(s.subscribers)
	s.subMu.RUnlock()

	s.boardMu.RLock()
	stats["leaderboardCached"] = s.boardCached && s.boardGen == s.generation
	s.boardMu.RUnlock()

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
