// Package masking turns a daily document into a content-free skeleton that
// is safe to hand to players: word tokens keep only their length while
// punctuation, whitespace and newlines pass through verbatim.
package masking

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/internal/domain/tokenizer"
)

// Token prefixes, one per field, so IDs never collide within a document.
const articleTitlePrefix = "at-"

func sectionTitlePrefix(i int) string   { return "s" + strconv.Itoa(i) + "t-" }
func sectionContentPrefix(i int) string { return "s" + strconv.Itoa(i) + "c-" }

// Section is the masked form of one document section.
type Section struct {
	TitleTokens   []tokenizer.Token `json:"titleTokens"`
	ContentTokens []tokenizer.Token `json:"contentTokens"`
}

// Article is the masked form of a whole document.
type Article struct {
	ArticleTitleTokens []tokenizer.Token `json:"articleTitleTokens"`
	Sections           []Section         `json:"sections"`
	TotalWords         int               `json:"totalWords"`
	Date               time.Time         `json:"-"`
}

// MarshalJSON renders the article with its date as a YYYY-MM-DD key.
func (a Article) MarshalJSON() ([]byte, error) {
	type plain Article
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain: plain(a), Date: model.DateKey(a.Date)})
}

// Mask builds the masked view of doc. The server-side word lists produced
// while tokenizing are dropped here and never leave this function.
func Mask(doc model.Document) Article {
	title := tokenizer.Tokenize(doc.Title, articleTitlePrefix)

	art := Article{
		ArticleTitleTokens: nonNil(title.Tokens),
		Sections:           make([]Section, 0, len(doc.Sections)),
		TotalWords:         len(title.Words),
		Date:               doc.Date,
	}

	for i, s := range doc.Sections {
		st := tokenizer.Tokenize(s.Title, sectionTitlePrefix(i))
		sc := tokenizer.Tokenize(s.Content, sectionContentPrefix(i))
		art.TotalWords += len(st.Words) + len(sc.Words)
		art.Sections = append(art.Sections, Section{
			TitleTokens:   nonNil(st.Tokens),
			ContentTokens: nonNil(sc.Tokens),
		})
	}
	return art
}

// nonNil keeps empty fields serialized as [] rather than null.
func nonNil(tokens []tokenizer.Token) []tokenizer.Token {
	if tokens == nil {
		return []tokenizer.Token{}
	}
	return tokens
}
