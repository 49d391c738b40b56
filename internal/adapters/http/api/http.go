// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/wikidle/internal/domain/guess"
	"github.com/okian/wikidle/internal/domain/masking"
	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/pkg/logger"
)

// DefaultMaxGuessLength bounds the length of a guessed word, in characters.
const DefaultMaxGuessLength = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	LeaderboardDependencies
}

// GameDependencies serves the daily puzzle.
type GameDependencies interface {
	MaskedArticle(ctx context.Context) (masking.Article, error)
	CheckGuess(ctx context.Context, word string) (guess.Result, error)
	Yesterday(ctx context.Context) (title string, ok bool, err error)
	Complete(ctx context.Context, user model.User, guessCount int) (model.Result, bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	gameHandler        *GameHandler
	leaderboardHandler *LeaderboardHandler
	live               http.Handler
	maxGuessLength     int
	logger             logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxGuessLength: DefaultMaxGuessLength}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.gameHandler = NewGameHandler(deps, s.maxGuessLength, s.logger)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/game", MetricsMiddleware(s.gameHandler.HandleGetGame, "game"))
	mux.HandleFunc("/api/game/guess", MetricsMiddleware(s.gameHandler.HandlePostGuess, "guess"))
	mux.HandleFunc("/api/game/yesterday", MetricsMiddleware(s.gameHandler.HandleGetYesterday, "yesterday"))
	mux.HandleFunc("/api/game/complete", MetricsMiddleware(s.gameHandler.HandlePostComplete, "complete"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	if s.live != nil {
		mux.HandleFunc("/api/leaderboard/live", MetricsMiddleware(s.live.ServeHTTP, "leaderboard_live"))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error kind to its response status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status of its kind. Server-side failures are
// logged with their cause and answered with a generic message.
func fail(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", Op(err)), logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
