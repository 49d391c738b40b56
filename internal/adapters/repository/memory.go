package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/pkg/metrics"
)

type resultKey struct {
	userID int64
	day    string
}

// MemoryStore keeps results in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  []model.Result
	index map[resultKey]int
	cfg   settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		index: make(map[resultKey]int),
		cfg:   applyOptions(opts),
	}
}

func (s *MemoryStore) Record(ctx context.Context, r model.Result) (model.Result, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return model.Result{}, false, err
	}
	if err := validate(r); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_result")
		return model.Result{}, false, err
	}

	key := resultKey{userID: r.UserID, day: model.DateKey(r.PuzzleDate)}

	s.mu.Lock()
	if i, ok := s.index[key]; ok {
		existing := s.rows[i]
		s.mu.Unlock()
		return existing, false, nil
	}
	r = prepare(r, s.cfg)
	s.index[key] = len(s.rows)
	s.rows = append(s.rows, r)
	count := len(s.rows)
	s.mu.Unlock()

	metrics.UpdateResultsTotal(count)
	return r, true, nil
}

func (s *MemoryStore) Results(ctx context.Context) ([]model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := append([]model.Result(nil), s.rows...)
	s.mu.RUnlock()

	sortResults(out)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
