// Package document provides the daily documents behind each puzzle.
package document

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
	"gopkg.in/yaml.v3"
)

const secondsPerDay = 86_400

// Provider returns the document of a puzzle day.
type Provider interface {
	Today(ctx context.Context) (model.Document, error)
	Yesterday(ctx context.Context) (model.Document, error)
}

// entry mirrors one catalog item in YAML.
type entry struct {
	Date     string          `yaml:"date"`
	Title    string          `yaml:"title"`
	Sections []model.Section `yaml:"sections"`
}

type catalogFile struct {
	Documents []entry `yaml:"documents"`
}

// Catalog serves documents from a fixed list. A day with a dated entry gets
// that entry; any other day rotates through the list deterministically.
type Catalog struct {
	docs   []model.Document // dated entries first by date, undated in file order
	byDate map[string]int
	now    func() time.Time
	loc    *time.Location
}

var _ Provider = (*Catalog)(nil)

// Load reads a YAML catalog from path.
func Load(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse decodes a YAML catalog.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	docs := make([]model.Document, 0, len(file.Documents))
	for i, e := range file.Documents {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: document %d has no title", ErrInvalidCatalog, i)
		}
		doc := model.Document{Title: title, Sections: e.Sections}
		if e.Date != "" {
			d, err := time.Parse(model.DateLayout, e.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: document %d: %v", ErrInvalidCatalog, i, err)
			}
			doc.Date = d
		}
		docs = append(docs, doc)
	}
	return New(docs, opts...)
}

// New builds a catalog from documents. Two documents on the same date are
// rejected.
func New(docs []model.Document, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		now: time.Now,
		loc: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.docs = append([]model.Document(nil), docs...)
	sort.SliceStable(c.docs, func(i, j int) bool {
		a, b := c.docs[i].Date, c.docs[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})

	c.byDate = make(map[string]int, len(c.docs))
	for i, d := range c.docs {
		if d.Date.IsZero() {
			continue
		}
		key := model.DateKey(d.Date)
		if _, dup := c.byDate[key]; dup {
			return nil, fmt.Errorf("%w: two documents on %s", ErrInvalidCatalog, key)
		}
		c.byDate[key] = i
	}
	return c, nil
}

// Len returns the number of documents in the catalog.
func (c *Catalog) Len() int { return len(c.docs) }

// Today returns the document for the current calendar day.
func (c *Catalog) Today(ctx context.Context) (model.Document, error) {
	return c.On(ctx, c.today())
}

// Yesterday returns the document for the previous calendar day.
func (c *Catalog) Yesterday(ctx context.Context) (model.Document, error) {
	return c.On(ctx, c.today().AddDate(0, 0, -1))
}

// On returns the document for the calendar day of day. The returned
// document always carries that day at UTC midnight as its date.
func (c *Catalog) On(ctx context.Context, day time.Time) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if len(c.docs) == 0 {
		return model.Document{}, ErrNoDocument
	}

	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	idx, ok := c.byDate[model.DateKey(day)]
	if !ok {
		n := int64(len(c.docs))
		idx = int(((day.Unix()/secondsPerDay)%n + n) % n)
	}

	doc := c.docs[idx]
	doc.Sections = append([]model.Section(nil), doc.Sections...)
	doc.Date = day
	return doc, nil
}

// today is the current calendar day in the catalog's location, expressed
// at UTC midnight.
func (c *Catalog) today() time.Time {
	y, m, d := c.now().In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
