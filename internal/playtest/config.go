// Package playtest plays the daily puzzle against a running server with a
// crowd of scripted players, then checks the resulting leaderboard.
package playtest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Defaults for Config.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultPlayers    = 10
	DefaultMaxGuesses = 200
	DefaultTimeout    = 10 * time.Second
	DefaultFirstUser  = 1
)

// ErrInvalidConfig reports an unusable playtest configuration.
var ErrInvalidConfig = errors.New("invalid playtest config")

// Config holds configuration for a playtest run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Players    int           // Number of simulated players
	FirstUser  int64         // User id of the first player; the others follow
	Words      []string      // Candidate guesses, in preference order
	MaxGuesses int           // Guess budget per player
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every guess
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	case c.Players < 1:
		return fmt.Errorf("%w: players must be >= 1", ErrInvalidConfig)
	case c.FirstUser < 1:
		return fmt.Errorf("%w: first user id must be >= 1", ErrInvalidConfig)
	case c.MaxGuesses < 1:
		return fmt.Errorf("%w: max guesses must be >= 1", ErrInvalidConfig)
	case len(c.Words) == 0:
		return fmt.Errorf("%w: word list is empty", ErrInvalidConfig)
	}
	return nil
}

// ReadWords reads one candidate word per line. Blank lines and lines
// starting with # are skipped.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return words, nil
}

// LoadWords reads a word list file, or returns the built-in list when path
// is empty.
func LoadWords(path string) ([]string, error) {
	if path == "" {
		return DefaultWords(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	return ReadWords(f)
}

// DefaultWords returns the built-in guess list: frequent French words
// followed by the titles of the sample catalog.
func DefaultWords() []string {
	return []string{
		"le", "la", "les", "de", "des", "du", "un", "une", "et", "en", "est", "à",
		"il", "elle", "qui", "que", "dans", "pour", "par", "sur", "au", "aux",
		"plus", "son", "sa", "ses", "ce", "cette", "avec", "sont", "a", "l", "d",
		"famille", "espèce", "ville", "pays", "année", "monde", "nord", "sud",
		"france", "paris", "français", "française", "histoire", "construite",
		"tour", "eiffel", "quokka", "baobab",
	}
}

// Stats holds playtest statistics.
type Stats struct {
	Players      int
	Solved       int
	Guesses      int
	Hits         int
	Skipped      int
	Failed       int
	BestGuesses  int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	BoardEntries int
}
