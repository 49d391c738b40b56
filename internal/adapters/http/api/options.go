package api

import (
	"net/http"

	"github.com/okian/wikidle/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxGuessLength sets the longest accepted guess, in characters.
func WithMaxGuessLength(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxGuessLength = n
		}
	}
}

// WithLiveHandler serves h at /api/leaderboard/live.
func WithLiveHandler(h http.Handler) Option {
	return func(s *Server) {
		s.live = h
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
