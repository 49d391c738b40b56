// Package model contains domain models passed between layers.
package model

import "time"

// DateLayout is the calendar-day format used for puzzle dates on the wire.
const DateLayout = "2006-01-02"

// Section is one titled subsection of a daily document.
type Section struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

// Document is the withheld article behind a day's puzzle.
type Document struct {
	Title    string
	Sections []Section
	Date     time.Time
}

// DateKey formats a puzzle date as YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
