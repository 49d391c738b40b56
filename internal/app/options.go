package service

import (
	"time"

	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of leaderboard refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLeaderboardLimit caps the entries per leaderboard category.
func WithLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.engineOpts = append(s.engineOpts, leaderboard.WithLimit(limit))
		}
	}
}

// WithCategory registers an extra leaderboard category.
func WithCategory(c leaderboard.Category) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, leaderboard.WithCategory(c))
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
