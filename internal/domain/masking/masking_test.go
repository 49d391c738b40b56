package masking_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/okian/wikidle/internal/domain/masking"
	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/internal/domain/tokenizer"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleDocument() model.Document {
	return model.Document{
		Title: "Quokka de Rottnest",
		Sections: []model.Section{
			{Title: "Habitat", Content: "Le quokka vit sur l'île Rottnest.\n\nIl est herbivore."},
			{Title: "Étymologie", Content: "Nom d'origine nyungar : « gwaga »."},
		},
		Date: time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestMask(t *testing.T) {
	Convey("Given a daily document", t, func() {
		doc := sampleDocument()

		Convey("When it is masked", func() {
			art := masking.Mask(doc)

			Convey("Then every field gets its own token stream", func() {
				So(len(art.Sections), ShouldEqual, 2)
				So(art.ArticleTitleTokens[0].ID, ShouldEqual, "at-w0")
				So(art.Sections[0].TitleTokens[0].ID, ShouldEqual, "s0t-w0")
				So(art.Sections[1].ContentTokens[0].ID, ShouldEqual, "s1c-w0")
			})

			Convey("And the total word count spans every field including the title", func() {
				expected := 0
				expected += len(tokenizer.Tokenize(doc.Title, "").Words)
				for _, s := range doc.Sections {
					expected += len(tokenizer.Tokenize(s.Title, "").Words)
					expected += len(tokenizer.Tokenize(s.Content, "").Words)
				}
				So(art.TotalWords, ShouldEqual, expected)
				So(art.TotalWords, ShouldEqual, 3+1+10+1+5)
			})

			Convey("And punctuation tokens pass through unchanged", func() {
				var b strings.Builder
				for _, tok := range art.Sections[0].ContentTokens {
					if tok.IsWord() {
						b.WriteString(strings.Repeat("_", tok.Length))
					} else {
						b.WriteString(tok.Text)
					}
				}
				So(b.String(), ShouldEqual, "__ ______ ___ ___ _'___ ________.\n\n__ ___ _________.")
			})
		})

		Convey("When the masked article is serialized", func() {
			data, err := json.Marshal(masking.Mask(doc))
			So(err, ShouldBeNil)
			body := string(data)

			Convey("Then no word of the document is observable", func() {
				for _, secret := range []string{"Quokka", "quokka", "Rottnest", "Habitat", "herbivore", "Étymologie", "nyungar", "gwaga"} {
					So(body, ShouldNotContainSubstring, secret)
				}
			})

			Convey("And word tokens carry only type, id, index and length", func() {
				var decoded struct {
					ArticleTitleTokens []map[string]any `json:"articleTitleTokens"`
				}
				So(json.Unmarshal(data, &decoded), ShouldBeNil)
				for _, tok := range decoded.ArticleTitleTokens {
					if tok["type"] == "word" {
						So(len(tok), ShouldEqual, 4)
						So(tok, ShouldContainKey, "length")
						So(tok, ShouldNotContainKey, "text")
					}
				}
			})

			Convey("And the date is a calendar day key", func() {
				So(body, ShouldContainSubstring, `"date":"2026-10-18"`)
				So(body, ShouldContainSubstring, `"totalWords":20`)
			})
		})
	})

	Convey("Given a document with empty fields and no sections", t, func() {
		doc := model.Document{Date: time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)}

		Convey("When it is masked and serialized", func() {
			data, err := json.Marshal(masking.Mask(doc))

			Convey("Then empty token streams serialize as empty arrays", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"articleTitleTokens":[],"sections":[],"totalWords":0,"date":"2026-01-02"}`)
			})
		})
	})
}
