package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	service "github.com/okian/wikidle/internal/app"
	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/pkg/logger"
)

// Identity headers set by the upstream authenticator.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUsername  = "X-Username"
	HeaderDiscordID = "X-Discord-ID"
	HeaderAvatar    = "X-User-Avatar"
)

var (
	errMissingWord       = errors.New("missing word")
	errInvalidWord       = errors.New("invalid word")
	errInvalidBody       = errors.New("invalid request body")
	errInvalidGuessCount = errors.New("guessCount must be an integer >= 1")
)

// maxBodyBytes bounds guess and completion bodies. The longest valid guess
// is far below it even with every character JSON-escaped.
const maxBodyBytes = 4 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// GameHandler serves the daily puzzle endpoints.
type GameHandler struct {
	deps           GameDependencies
	maxGuessLength int
	logger         logger.Logger
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps GameDependencies, maxGuessLength int, log logger.Logger) *GameHandler {
	if maxGuessLength < 1 {
		maxGuessLength = DefaultMaxGuessLength
	}
	return &GameHandler{deps: deps, maxGuessLength: maxGuessLength, logger: log}
}

// HandleGetGame handles GET /api/game requests.
func (h *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	article, err := h.deps.MaskedArticle(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, article)
}

type guessRequest struct {
	Word json.RawMessage `json:"word"`
}

// word extracts the guessed word. Absent, null, non-string and empty
// values all count as missing.
func (g guessRequest) word() (string, bool) {
	var s string
	if len(g.Word) == 0 || json.Unmarshal(g.Word, &s) != nil || s == "" {
		return "", false
	}
	return s, true
}

// HandlePostGuess handles POST /api/game/guess requests.
func (h *GameHandler) HandlePostGuess(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_guess"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req guessRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errInvalidBody))
		return
	}
	word, ok := req.word()
	if !ok {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errMissingWord))
		return
	}
	trimmed := strings.TrimSpace(word)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > h.maxGuessLength {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errInvalidWord))
		return
	}

	res, err := h.deps.CheckGuess(r.Context(), trimmed)
	if err != nil {
		fail(r.Context(), h.logger, w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type yesterdayResponse struct {
	Title *string `json:"title"`
}

// HandleGetYesterday handles GET /api/game/yesterday requests.
func (h *GameHandler) HandleGetYesterday(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_yesterday"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	title, ok, err := h.deps.Yesterday(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, classify(op, err))
		return
	}
	var resp yesterdayResponse
	if ok {
		resp.Title = &title
	}
	writeJSON(w, http.StatusOK, resp)
}

type completeRequest struct {
	GuessCount json.RawMessage `json:"guessCount"`
}

func (c completeRequest) guessCount() (int, bool) {
	var n int
	if len(c.GuessCount) == 0 || json.Unmarshal(c.GuessCount, &n) != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type completeResponse struct {
	Success  bool   `json:"success"`
	ResultID string `json:"resultId"`
}

// userFromHeaders reads the caller identity. The user id is required.
func userFromHeaders(r *http.Request) (model.User, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
	if err != nil || id <= 0 {
		return model.User{}, false
	}
	return model.User{
		ID:        id,
		Username:  r.Header.Get(HeaderUsername),
		DiscordID: r.Header.Get(HeaderDiscordID),
		Avatar:    r.Header.Get(HeaderAvatar),
	}, true
}

// HandlePostComplete handles POST /api/game/complete requests.
func (h *GameHandler) HandlePostComplete(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_complete"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	user, ok := userFromHeaders(r)
	if !ok {
		fail(r.Context(), h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	var req completeRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errInvalidBody))
		return
	}
	count, ok := req.guessCount()
	if !ok {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errInvalidGuessCount))
		return
	}

	res, _, err := h.deps.Complete(r.Context(), user, count)
	if err != nil {
		fail(r.Context(), h.logger, w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Success: true, ResultID: res.ID})
}

// classify attaches the API kind matching a service error.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentUnavailable):
		return WrapKind(op, ErrUnavailable, err)
	case errors.Is(err, service.ErrInvalidUser):
		return WrapKind(op, ErrUnauthorized, err)
	case errors.Is(err, service.ErrInvalidGuessCount):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return Wrap(op, err)
	}
}
