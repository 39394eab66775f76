// Package paper defines the core domain type for rows of a paper metadata table.
package paper

import (
	"strings"
	"time"
)

// Record is one row of the loaded metadata table.
// Records are built once by the loader and never modified afterwards.
type Record struct {
	// Identity (optional columns, empty when the file lacks them)
	CordUID string `json:"cord_uid,omitempty"`
	DOI     string `json:"doi,omitempty"`
	Source  string `json:"source,omitempty"` // source_x column, e.g. "PMC", "Elsevier"

	// Metadata
	Title   *string `json:"title"`   // nil when the cell is missing
	Journal *string `json:"journal"` // nil when the cell is missing

	// PublishTime is always set for a loaded record; rows whose
	// publish_time could not be parsed are dropped at load time.
	PublishTime time.Time `json:"publish_time"`
}

// String returns a pointer to s, for building records in code and tests.
func String(s string) *string {
	return &s
}

// HasTitle reports whether the record carries a title cell.
func (r Record) HasTitle() bool {
	return r.Title != nil
}

// TitleText returns the title, or "" when missing.
func (r Record) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// JournalText returns the journal name, or "" when missing.
func (r Record) JournalText() string {
	if r.Journal == nil {
		return ""
	}
	return *r.Journal
}

// IsBlank reports whether s is missing or consists only of whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
