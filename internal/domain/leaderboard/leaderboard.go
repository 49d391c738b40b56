// Package leaderboard aggregates game results into ranked category tables.
//
// Categories live in an ordered registry mapping an id to a pure function
// over the full set of result rows. Adding a category means adding a
// registry entry; existing categories are untouched.
package leaderboard

import (
	"github.com/okian/wikidle/internal/domain/model"
)

// DefaultLimit caps the number of entries per category.
const DefaultLimit = 20

// SortOrder tells clients whether lower or higher values rank first.
type SortOrder string

// Sort orders.
const (
	Ascending  SortOrder = "asc"  // lower is better
	Descending SortOrder = "desc" // higher is better
)

// CategoryID identifies a leaderboard category.
type CategoryID string

// Built-in categories.
const (
	WinStreak CategoryID = "win-streak"
	BestGuess CategoryID = "best-guess"
	MostWins  CategoryID = "most-wins"
)

// Meta describes a category.
type Meta struct {
	ID          CategoryID `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	ValueLabel  string     `json:"valueLabel"`
	SortOrder   SortOrder  `json:"sortOrder"`
}

// Entry is one ranked row of a category.
type Entry struct {
	Rank      int     `json:"rank"`
	UserID    int64   `json:"userId"`
	Username  string  `json:"username"`
	Avatar    *string `json:"avatar"`
	DiscordID string  `json:"discordId"`
	Value     int     `json:"value"`
	Detail    string  `json:"detail,omitempty"`
}

// CategoryData pairs a category with its computed entries.
type CategoryData struct {
	Meta    Meta    `json:"meta"`
	Entries []Entry `json:"entries"`
}

// Board is the full leaderboard response.
type Board struct {
	Categories []CategoryData `json:"categories"`
}

// Computer ranks rows for one category and returns at most limit entries.
type Computer func(rows []model.Result, limit int) []Entry

// Category is a registry entry.
type Category struct {
	Meta    Meta
	Compute Computer
}

// DefaultCategories returns the built-in registry in display order.
func DefaultCategories() []Category {
	return []Category{
		{
			Meta: Meta{
				ID:          WinStreak,
				Label:       "Best streak",
				Description: "Most consecutive days with a win",
				ValueLabel:  "days",
				SortOrder:   Descending,
			},
			Compute: ComputeWinStreak,
		},
		{
			Meta: Meta{
				ID:          BestGuess,
				Label:       "Best performance",
				Description: "Fewest guesses needed to find an article",
				ValueLabel:  "attempts",
				SortOrder:   Ascending,
			},
			Compute: ComputeBestGuess,
		},
		{
			Meta: Meta{
				ID:          MostWins,
				Label:       "Most wins",
				Description: "Highest total number of wins",
				ValueLabel:  "wins",
				SortOrder:   Descending,
			},
			Compute: ComputeMostWins,
		},
	}
}

// Engine computes every registered category over a row set.
type Engine struct {
	categories []Category
	limit      int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLimit sets the maximum number of entries per category.
func WithLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

// WithCategory registers c. A category with the same id is replaced in
// place; a new id is appended after the existing ones.
func WithCategory(c Category) Option {
	return func(e *Engine) {
		if c.Compute == nil || c.Meta.ID == "" {
			return
		}
		for i := range e.categories {
			if e.categories[i].Meta.ID == c.Meta.ID {
				e.categories[i] = c
				return
			}
		}
		e.categories = append(e.categories, c)
	}
}

// New creates an Engine with the default registry.
func New(opts ...Option) *Engine {
	e := &Engine{
		categories: DefaultCategories(),
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Categories returns the registry metadata in display order.
func (e *Engine) Categories() []Meta {
	metas := make([]Meta, len(e.categories))
	for i, c := range e.categories {
		metas[i] = c.Meta
	}
	return metas
}

// Limit returns the per-category entry cap.
func (e *Engine) Limit() int { return e.limit }

// Compute runs every category over rows. Categories are independent and
// never see each other's output.
func (e *Engine) Compute(rows []model.Result) []CategoryData {
	out := make([]CategoryData, 0, len(e.categories))
	for _, c := range e.categories {
		out = append(out, CategoryData{Meta: c.Meta, Entries: e.run(c, rows)})
	}
	return out
}

// Board computes the full leaderboard response over rows.
func (e *Engine) Board(rows []model.Result) Board {
	return Board{Categories: e.Compute(rows)}
}

// ComputeCategory runs a single category. The boolean is false for an
// unknown id.
func (e *Engine) ComputeCategory(id CategoryID, rows []model.Result) (CategoryData, bool) {
	for _, c := range e.categories {
		if c.Meta.ID == id {
			return CategoryData{Meta: c.Meta, Entries: e.run(c, rows)}, true
		}
	}
	return CategoryData{}, false
}

func (e *Engine) run(c Category, rows []model.Result) []Entry {
	entries := c.Compute(rows, e.limit)
	if entries == nil {
		return []Entry{}
	}
	return entries
}
