// Package aggregate derives the summary views drawn by the timeline and
// journal charts from a loaded paper table.
package aggregate

import (
	"errors"
	"sort"
	"time"

	"github.com/matsen/paperdash/internal/paper"
)

// TopJournalLimit is the number of journals kept by JournalFrequency.
const TopJournalLimit = 10

// ErrEmpty is returned when a view has nothing to show. Callers render a
// fallback message instead of a chart.
var ErrEmpty = errors.New("empty result")

// MonthCount is the number of papers published in one calendar month.
type MonthCount struct {
	Month time.Time `json:"month"` // first instant of the month, UTC
	Count int       `json:"count"`
}

// Label formats the month as "2006-01".
func (m MonthCount) Label() string {
	return m.Month.Format("2006-01")
}

// JournalCount is the number of papers attributed to one journal.
type JournalCount struct {
	Journal string `json:"journal"`
	Count   int    `json:"count"`
}

// RankCount is one point of the long-tail scatter.
type RankCount struct {
	Rank  int `json:"rank"`
	Count int `json:"count"`
}

// MonthStart truncates t to the first instant of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyCounts groups records by calendar month of their publish time.
// The series is chronological and continuous: months between the first and
// last populated month that have no papers appear with a zero count.
// An empty input yields an empty series.
func MonthlyCounts(records []paper.Record) []MonthCount {
	if len(records) == 0 {
		return []MonthCount{}
	}

	counts := make(map[time.Time]int)
	first, last := MonthStart(records[0].PublishTime), MonthStart(records[0].PublishTime)
	for _, r := range records {
		m := MonthStart(r.PublishTime)
		counts[m]++
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	var series []MonthCount
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		series = append(series, MonthCount{Month: m, Count: counts[m]})
	}
	return series
}

// NormalizeJournal maps missing and whitespace-only journal names to nil.
// Other values are returned unchanged.
func NormalizeJournal(journal *string) *string {
	if paper.IsBlank(journal) {
		return nil
	}
	return journal
}

// countJournals counts normalized journal names and returns them ordered by
// count descending, ties broken alphabetically.
func countJournals(records []paper.Record) []JournalCount {
	counts := make(map[string]int)
	for _, r := range records {
		if j := NormalizeJournal(r.Journal); j != nil {
			counts[*j]++
		}
	}

	ranked := make([]JournalCount, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, JournalCount{Journal: name, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Journal < ranked[j].Journal
	})
	return ranked
}

// AllJournals returns every non-blank journal with its count, most frequent first.
func AllJournals(records []paper.Record) []JournalCount {
	return countJournals(records)
}

// JournalFrequency returns the ten most frequent journals.
// Returns ErrEmpty if no record has a non-blank journal.
func JournalFrequency(records []paper.Record) ([]JournalCount, error) {
	ranked := countJournals(records)
	if len(ranked) == 0 {
		return nil, ErrEmpty
	}
	if len(ranked) > TopJournalLimit {
		ranked = ranked[:TopJournalLimit]
	}
	return ranked, nil
}

// JournalLongTail returns the count of every journal paired with its rank,
// for plotting the frequency distribution on log-log axes.
// Returns ErrEmpty if no record has a non-blank journal.
func JournalLongTail(records []paper.Record) ([]RankCount, error) {
	ranked := countJournals(records)
	if len(ranked) == 0 {
		return nil, ErrEmpty
	}

	points := make([]RankCount, len(ranked))
	for i, jc := range ranked {
		points[i] = RankCount{Rank: i + 1, Count: jc.Count}
	}
	return points, nil
}

// Total sums the counts of a monthly series.
func Total(series []MonthCount) int {
	total := 0
	for _, m := range series {
		total += m.Count
	}
	return total
}
