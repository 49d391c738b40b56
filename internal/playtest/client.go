package playtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wikidle/internal/domain/guess"
	"github.com/okian/wikidle/internal/domain/leaderboard"
)

// Identity headers understood by the server.
const (
	headerUserID   = "X-User-ID"
	headerUsername = "X-Username"
)

// wireToken is a masked token as served by GET /api/game.
type wireToken struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}

type wireSection struct {
	TitleTokens   []wireToken `json:"titleTokens"`
	ContentTokens []wireToken `json:"contentTokens"`
}

// Article is the masked article as served by GET /api/game.
type Article struct {
	ArticleTitleTokens []wireToken   `json:"articleTitleTokens"`
	Sections           []wireSection `json:"sections"`
	TotalWords         int           `json:"totalWords"`
	Date               string        `json:"date"`
}

type completeResponse struct {
	Success  bool   `json:"success"`
	ResultID string `json:"resultId"`
}

// StatusError is returned for unexpected response statuses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// HTTPClient wraps http.Client for the game API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// Health checks that the server answers on /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

// Article fetches today's masked article.
func (c *HTTPClient) Article(ctx context.Context) (Article, error) {
	var a Article
	err := c.do(ctx, http.MethodGet, "/api/game", nil, nil, &a)
	return a, err
}

// Guess submits one word.
func (c *HTTPClient) Guess(ctx context.Context, word string) (guess.Result, error) {
	var res guess.Result
	err := c.do(ctx, http.MethodPost, "/api/game/guess", map[string]string{"word": word}, nil, &res)
	return res, err
}

// Complete records a win for the player.
func (c *HTTPClient) Complete(ctx context.Context, userID int64, username string, guessCount int) (string, error) {
	var res completeResponse
	headers := map[string]string{
		headerUserID:   strconv.FormatInt(userID, 10),
		headerUsername: username,
	}
	err := c.do(ctx, http.MethodPost, "/api/game/complete", map[string]int{"guessCount": guessCount}, headers, &res)
	return res.ResultID, err
}

// Leaderboard fetches the leaderboard.
func (c *HTTPClient) Leaderboard(ctx context.Context) (leaderboard.Board, error) {
	var b leaderboard.Board
	err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, nil, &b)
	return b, err
}
