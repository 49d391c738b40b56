package playtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/wikidle/pkg/logger"
)

// maxConcurrentPlayers bounds the players talking to the server at once.
const maxConcurrentPlayers = 16

// Run plays the daily puzzle with cfg.Players players and verifies the
// leaderboard afterwards.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{Players: cfg.Players, StartTime: time.Now()}

	log.Info(ctx, "starting wikidle playtest",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("words", len(cfg.Words)),
		logger.Int("maxGuesses", cfg.MaxGuesses),
		logger.Duration("timeout", cfg.Timeout))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	outcomes, failed, err := playAll(ctx, cfg, client, log)
	if err != nil {
		return nil, err
	}
	stats.Failed = failed
	for _, o := range outcomes {
		stats.Guesses += o.Guesses
		stats.Hits += o.Hits
		stats.Skipped += o.Skipped
		if o.Solved {
			stats.Solved++
			if stats.BestGuesses == 0 || o.Guesses < stats.BestGuesses {
				stats.BestGuesses = o.Guesses
			}
		}
	}

	board, err := client.Leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	for _, c := range board.Categories {
		stats.BoardEntries += len(c.Entries)
	}
	if err := VerifyLeaderboard(board); err != nil {
		return nil, fmt.Errorf("leaderboard verification failed: %w", err)
	}
	if err := verifyOutcomes(board, outcomes); err != nil {
		return nil, fmt.Errorf("leaderboard verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// playAll runs every player. One player's failure does not stop the others;
// it is counted and logged.
func playAll(ctx context.Context, cfg *Config, client *HTTPClient, log logger.Logger) ([]Outcome, int, error) {
	var (
		mu       sync.Mutex
		outcomes []Outcome
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPlayers)
	for i := 0; i < cfg.Players; i++ {
		id := cfg.FirstUser + int64(i)
		g.Go(func() error {
			p := NewPlayer(id, cfg.Words, cfg.MaxGuesses, client, log, cfg.Verbose)
			out, err := p.Play(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Warn(gctx, "player failed", logger.Int64("player", id), logger.Error(err))
				return nil
			}
			outcomes = append(outcomes, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failed, err
	}
	if failed == cfg.Players {
		return nil, failed, fmt.Errorf("all %d players failed", failed)
	}
	return outcomes, failed, nil
}

// displayFinalStats logs the final playtest statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var hitRate float64
	if stats.Guesses > 0 {
		hitRate = float64(stats.Hits) / float64(stats.Guesses) * 100
	}
	log.Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("solved", stats.Solved),
		logger.Int("failed", stats.Failed),
		logger.Int("guesses", stats.Guesses),
		logger.Int("skipped", stats.Skipped),
		logger.Int("bestGuesses", stats.BestGuesses),
		logger.Int("leaderboardEntries", stats.BoardEntries),
		logger.Float64("hitRate", hitRate),
		logger.Duration("duration", stats.Duration))
}
