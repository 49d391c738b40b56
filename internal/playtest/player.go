package playtest

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/wikidle/internal/domain/dedupe"
	"github.com/okian/wikidle/internal/domain/guess"
	"github.com/okian/wikidle/internal/domain/tokenizer"
	"github.com/okian/wikidle/pkg/logger"
)

// revealKey identifies one word occurrence. Word indices restart in every
// field, so the section and part are part of the key.
type revealKey struct {
	section int
	part    guess.Part
	index   int
}

// Outcome is what one player achieved.
type Outcome struct {
	UserID   int64
	Username string
	Solved   bool
	Guesses  int
	Hits     int
	Skipped  int
	ResultID string
}

// Player is one scripted player.
type Player struct {
	id      int64
	name    string
	words   []string
	budget  int
	client  *HTTPClient
	history dedupe.Deduper
	log     logger.Logger
	verbose bool
}

// NewPlayer creates a player guessing words in a per-player shuffled order.
func NewPlayer(id int64, words []string, budget int, client *HTTPClient, log logger.Logger, verbose bool) *Player {
	shuffled := append([]string(nil), words...)
	rng := rand.New(rand.NewPCG(uint64(id), uint64(len(words))))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	return &Player{
		id:      id,
		name:    fmt.Sprintf("playtest-%d", id),
		words:   shuffled,
		budget:  budget,
		client:  client,
		history: dedupe.NewInMemoryDeduper(dedupe.WithNormalizer(tokenizer.Normalize)),
		log:     log,
		verbose: verbose,
	}
}

// Play guesses until every title word is revealed, the word list runs out
// or the budget is spent. A solved puzzle is reported to the server.
func (p *Player) Play(ctx context.Context) (Outcome, error) {
	out := Outcome{UserID: p.id, Username: p.name}

	article, err := p.client.Article(ctx)
	if err != nil {
		return out, err
	}
	title := make(map[revealKey]bool)
	for _, t := range article.ArticleTitleTokens {
		if t.Type == string(tokenizer.KindWord) {
			title[revealKey{section: guess.ArticleTitle, part: guess.PartTitle, index: t.Index}] = false
		}
	}

	for _, word := range p.words {
		if out.Guesses >= p.budget || solved(title) {
			break
		}
		if p.history.SeenAndRecord(ctx, word) {
			out.Skipped++
			continue
		}

		res, err := p.client.Guess(ctx, word)
		if err != nil {
			p.history.Unrecord(ctx, word)
			return out, err
		}
		out.Guesses++
		if res.Found {
			out.Hits++
		}
		for _, pos := range res.Positions {
			k := revealKey{section: pos.Section, part: pos.Part, index: pos.WordIndex}
			if _, ok := title[k]; ok {
				title[k] = true
			}
		}
		if p.verbose {
			p.log.Debug(ctx, "guess",
				logger.Int64("player", p.id),
				logger.String("word", word),
				logger.Int("occurrences", res.Occurrences))
		}
	}

	if !solved(title) {
		return out, nil
	}
	out.Solved = true
	out.ResultID, err = p.client.Complete(ctx, p.id, p.name, out.Guesses)
	return out, err
}

// solved reports whether every title word is revealed. A title without
// words is never solved.
func solved(title map[revealKey]bool) bool {
	if len(title) == 0 {
		return false
	}
	for _, ok := range title {
		if !ok {
			return false
		}
	}
	return true
}
