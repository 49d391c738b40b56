// Package guess verifies a player's guess against the daily document and
// reports every occurrence of the guessed word.
package guess

import (
	"strings"

	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/internal/domain/tokenizer"
)

// ArticleTitle is the section index used for the document's own title.
const ArticleTitle = -1

// Part names the field of a section a position belongs to.
type Part string

// Parts of a section.
const (
	PartTitle   Part = "title"
	PartContent Part = "content"
)

// Position locates one occurrence of a word. Word indices restart in every
// field, so a position is only unique as the (Section, Part, WordIndex) triple.
type Position struct {
	Section   int    `json:"section"`
	Part      Part   `json:"part"`
	WordIndex int    `json:"wordIndex"`
	Display   string `json:"display"`
}

// Result is the outcome of one guess.
type Result struct {
	Found       bool       `json:"found"`
	Word        string     `json:"word"`
	Positions   []Position `json:"positions"`
	Occurrences int        `json:"occurrences"`
}

// Check looks up raw in doc. An empty guess (after trimming and
// normalization) is a miss with an empty word, not an error.
func Check(raw string, doc model.Document) Result {
	word := tokenizer.Normalize(strings.TrimSpace(raw))
	if word == "" {
		return Result{Positions: []Position{}}
	}

	positions := []Position{}
	positions = collect(positions, word, doc.Title, ArticleTitle, PartTitle)
	for i, s := range doc.Sections {
		positions = collect(positions, word, s.Title, i, PartTitle)
		positions = collect(positions, word, s.Content, i, PartContent)
	}

	return Result{
		Found:       len(positions) > 0,
		Word:        word,
		Positions:   positions,
		Occurrences: len(positions),
	}
}

// collect appends the positions of word within one field.
func collect(dst []Position, word, field string, section int, part Part) []Position {
	for _, w := range tokenizer.Tokenize(field, "").Words {
		if w.Normalized == word {
			dst = append(dst, Position{
				Section:   section,
				Part:      part,
				WordIndex: w.Index,
				Display:   w.Display,
			})
		}
	}
	return dst
}
