// Package tokenizer splits document text into word and punctuation tokens.
//
// Word tokens are maximal runs of letters and digits; everything else
// (whitespace runs, single newlines, punctuation runs) becomes a punctuation
// token. The token stream covers the input without gaps or overlaps.
package tokenizer

import (
	"encoding/json"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Kind tags the variant of a Token.
type Kind string

// Token variants.
const (
	KindWord  Kind = "word"
	KindPunct Kind = "punct"
)

// Token is one segment of a tokenized text.
//
// Word tokens only expose their ID, word index and character length when
// serialized. Punctuation tokens expose their literal text.
type Token struct {
	Kind   Kind
	ID     string
	Index  int    // word index within the field; word tokens only
	Length int    // length in characters; word tokens only
	Text   string // literal text; punctuation tokens only

	// Start and End delimit the token in the source text (byte offsets).
	Start int
	End   int
}

// IsWord reports whether t is a word token.
func (t Token) IsWord() bool { return t.Kind == KindWord }

// Span returns the substring of text covered by t.
func (t Token) Span(text string) string { return text[t.Start:t.End] }

type wordJSON struct {
	Type   Kind   `json:"type"`
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Length int    `json:"length"`
}

type punctJSON struct {
	Type Kind   `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MarshalJSON emits the client-facing shape of the token. Word tokens never
// carry their letters.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsWord() {
		return json.Marshal(wordJSON{Type: KindWord, ID: t.ID, Index: t.Index, Length: t.Length})
	}
	return json.Marshal(punctJSON{Type: KindPunct, ID: t.ID, Text: t.Text})
}

// Word is the server-side record of a word token. It must never be sent to
// clients as part of a masked view.
type Word struct {
	Normalized string
	Display    string
	Index      int
}

// Result holds the tokens of one text and the words found in it.
type Result struct {
	Tokens []Token
	Words  []Word
}

type class uint8

const (
	classWord class = iota
	classNewline
	classSpace
	classOther
)

// isWordRune accepts letters, digits and non-spacing marks, so a word typed
// with combining accents stays one word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func classify(r rune) class {
	switch {
	case r == '\n':
		return classNewline
	case isWordRune(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classOther
	}
}

// Tokenize splits text into tokens. Every token ID starts with prefix;
// callers pick distinct prefixes for distinct fields of a document.
func Tokenize(text, prefix string) Result {
	var res Result
	wordIndex := 0
	counter := 0

	for pos := 0; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])
		c := classify(r)
		end := pos + size
		// A newline is always a token of its own.
		if c != classNewline {
			for end < len(text) {
				next, n := utf8.DecodeRuneInString(text[end:])
				if classify(next) != c {
					break
				}
				end += n
			}
		}

		segment := text[pos:end]
		if c == classWord {
			res.Tokens = append(res.Tokens, Token{
				Kind:   KindWord,
				ID:     prefix + "w" + strconv.Itoa(counter),
				Index:  wordIndex,
				Length: utf8.RuneCountInString(segment),
				Start:  pos,
				End:    end,
			})
			res.Words = append(res.Words, Word{
				Normalized: Normalize(segment),
				Display:    segment,
				Index:      wordIndex,
			})
			wordIndex++
		} else {
			res.Tokens = append(res.Tokens, Token{
				Kind:  KindPunct,
				ID:    prefix + "p" + strconv.Itoa(counter),
				Text:  segment,
				Start: pos,
				End:   end,
			})
		}
		counter++
		pos = end
	}
	return res
}

// WordCount returns the number of word tokens in tokens.
func WordCount(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if t.IsWord() {
			n++
		}
	}
	return n
}
